package rounds

import (
	"context"
	"time"

	"launchpad-backend/internal/chain"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Ticker advances the block clock and progresses all live projects on a fixed
// interval. One tick is one block.
type Ticker struct {
	DB       *gorm.DB
	Clock    *chain.Clock
	Rounds   *Service
	Interval time.Duration
}

// Tick advances the chain by one block and runs round progression.
func (t *Ticker) Tick(ctx context.Context) {
	var height int64
	err := t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		height, err = t.Clock.Advance(tx)
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("Block advance failed")
		return
	}
	log.Debug().Int64("height", height).Msg("Block produced")
	if err := t.Rounds.AdvanceAll(ctx); err != nil {
		log.Error().Err(err).Msg("Round progression failed")
	}
}

// Start registers the tick on a gocron scheduler and starts it. The returned
// scheduler should be shut down on exit.
func (t *Ticker) Start() (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	interval := t.Interval
	if interval == 0 {
		interval = 6 * time.Second
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			t.Tick(context.Background())
		}),
		gocron.WithName("block_ticker"),
	)
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	log.Info().Dur("interval", interval).Msg("Block ticker started")
	return scheduler, nil
}
