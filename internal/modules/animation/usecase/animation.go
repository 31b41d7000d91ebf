package usecase

import (
	hclog "github.com/hashicorp/go-hclog"

	"focusreel/internal/modules/animation/domain"
	"focusreel/internal/modules/animation/dto"
	animationin "focusreel/internal/modules/animation/port/in"
	"focusreel/internal/modules/animation/service"
	"focusreel/internal/platform/clock"
)

type Interactor struct {
	clock  clock.Clock
	seed   uint64
	config domain.Config
	logger hclog.Logger
}

func NewInteractor(clk clock.Clock, seed uint64, cfg domain.Config, logger hclog.Logger) animationin.Usecase {
	return &Interactor{clock: clk, seed: seed, config: cfg, logger: logger}
}

func (i *Interactor) Open(photos []string) (animationin.Player, error) {
	player, err := service.NewPlayer(i.clock, photos, i.seed, i.config, i.logger)
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (i *Interactor) Pile(photos []string) ([]dto.CardView, error) {
	player, err := service.NewPlayer(i.clock, photos, i.seed, i.config, i.logger)
	if err != nil {
		return nil, err
	}
	return player.FrameAt(domain.PhasePile).Cards, nil
}
