package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qanai/shopflow/internal/browser"
	"github.com/qanai/shopflow/internal/config"
	"github.com/qanai/shopflow/internal/dataset"
	"github.com/qanai/shopflow/internal/models"
	"github.com/qanai/shopflow/internal/services"
	"github.com/qanai/shopflow/internal/steps"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunDependencies holds everything needed for one run of the purchase flow
type RunDependencies struct {
	Config   *config.RunConfig
	Locators config.Locators
	Source   dataset.Source
	Launcher browser.Launcher
	Recorder services.RunRecorder
	// Out receives the run summary; nil discards it
	Out io.Writer
	// Now defaults to time.Now
	Now func() time.Time
	// Interrupt delivers signals that abort the run. Nil registers SIGINT and
	// SIGTERM.
	Interrupt chan os.Signal
}

// RunFlow loads the test case, drives the browser through search, select and
// add-to-cart, and always tears the browser down. The returned run is nil only
// when the test case could not be loaded.
func RunFlow(ctx context.Context, deps RunDependencies) (*models.Run, error) {
	cfg := deps.Config

	tc, err := deps.Source.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error reading test data")
		return nil, fmt.Errorf("failed to load test data: %w", err)
	}
	log.Info().Stringer("test_case", tc).Msg("Loaded test data")

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	run := models.NewRun(tc, now())
	logger := log.With().Str("run_id", run.ID).Logger()
	logger.Info().Str("timestamp", run.Timestamp).Msg("Setting up the test")

	session, err := browser.Start(deps.Launcher, browser.OptionsFromConfig(cfg))
	if err != nil {
		logger.Error().Err(err).Msg("Browser failed to start")
		finish(deps, run, err, logger)
		return run, err
	}
	defer session.Close()

	stop := watchInterrupt(session, deps.Interrupt, logger)
	flowErr := execute(session, run, deps, logger)
	stop()

	logger.Info().Msg("Tearing down the test")
	if err := session.Close(); err != nil {
		logger.Warn().Err(err).Msg("Browser did not quit cleanly")
	}
	finish(deps, run, flowErr, logger)
	return run, flowErr
}

func execute(session *browser.Session, run *models.Run, deps RunDependencies, logger zerolog.Logger) error {
	cfg := deps.Config

	if err := session.Prepare(cfg.TargetURL, cfg.TitleContains, cfg.Viewport, cfg.Timeouts.Title); err != nil {
		return err
	}
	if err := run.Advance(models.RunStateBrowserReady); err != nil {
		return err
	}
	logger.Info().Msg("Test setup completed")

	rc := &steps.RunContext{
		Driver:        session.Driver(),
		TestCase:      run.TestCase,
		Locators:      deps.Locators,
		Timeouts:      cfg.Timeouts,
		ScreenshotDir: cfg.ScreenshotDir,
		Run:           run,
		Logger:        logger,
	}

	logger.Info().Msg("Step 1: Searching for item")
	if err := steps.Search(rc); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if err := run.Advance(models.RunStateSearched); err != nil {
		return err
	}

	logger.Info().Msg("Step 2: Selecting the item")
	if _, err := steps.Select(rc); err != nil {
		return fmt.Errorf("select failed: %w", err)
	}
	if err := run.Advance(models.RunStateSelected); err != nil {
		return err
	}

	logger.Info().Msg("Step 3: Adding the item to the cart")
	if _, err := steps.AddToCart(rc); err != nil {
		return fmt.Errorf("add to cart failed: %w", err)
	}
	if err := run.Advance(models.RunStateAddedToCart); err != nil {
		return err
	}

	logger.Info().Msg("Test case completed successfully")
	return nil
}

// finish tears the run down, records it and prints the summary. Recording is
// best effort.
func finish(deps RunDependencies, run *models.Run, cause error, logger zerolog.Logger) {
	if err := run.TearDown(cause); err != nil {
		logger.Warn().Err(err).Msg("Run already torn down")
	}

	if deps.Recorder != nil {
		if err := deps.Recorder.Record(run); err != nil {
			logger.Warn().Err(err).Msg("Failed to record run history")
		}
	}

	if deps.Out != nil {
		PrintSummary(deps.Out, run)
	}
	logger.Info().Bool("passed", run.Passed).Str("reached", string(run.Reached)).Dur("duration", run.Duration()).Msg("Test teardown completed")
}

// watchInterrupt closes the session when a signal arrives, which makes any
// in-flight browser call fail. The returned func stops watching.
func watchInterrupt(session *browser.Session, interrupt chan os.Signal, logger zerolog.Logger) func() {
	if interrupt == nil {
		interrupt = make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case sig := <-interrupt:
			logger.Warn().Stringer("signal", sig).Msg("Interrupted, closing browser")
			if err := session.Close(); err != nil {
				logger.Warn().Err(err).Msg("Browser did not quit cleanly")
			}
		case <-done:
		}
	}()

	return func() {
		close(done)
		<-stopped
		signal.Stop(interrupt)
	}
}
