package dto

import "focusreel/internal/modules/export/domain"

type ShareInput struct {
	File  domain.File
	Path  string
	Title string
	Text  string
}

type ShareOutput struct {
	Shared  bool
	Aborted bool
	Opened  bool
}
