package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/qanai/shopflow/internal/browser"
	internalcli "github.com/qanai/shopflow/internal/cli"
	"github.com/qanai/shopflow/internal/config"
	"github.com/qanai/shopflow/internal/database"
	"github.com/qanai/shopflow/internal/dataset"
	"github.com/qanai/shopflow/internal/models"
	"github.com/qanai/shopflow/internal/repository"
	"github.com/qanai/shopflow/internal/services"
	"github.com/qanai/shopflow/internal/storefront"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "data", Usage: "workbook path or gsheet://<spreadsheet id>"},
		&cli.StringFlag{Name: "sheet", Usage: "sheet holding the test case"},
		&cli.IntFlag{Name: "row", Usage: "zero-based row of the test case"},
	}
}

// loadRunConfig reads the environment and applies explicitly set flags on top
func loadRunConfig(c *cli.Context) (*config.RunConfig, error) {
	cfg, err := config.LoadRunConfig(os.Getenv)
	if err != nil {
		return nil, err
	}

	if c.IsSet("data") {
		cfg.DataFile = c.String("data")
	}
	if c.IsSet("sheet") {
		cfg.Sheet = c.String("sheet")
	}
	if c.IsSet("row") {
		cfg.Row = c.Int("row")
	}
	if c.IsSet("driver") {
		cfg.Driver = c.String("driver")
		if os.Getenv("SHOPFLOW_BROWSER") == "" {
			cfg.Browser = config.DefaultBrowserFor(cfg.Driver)
		}
	}
	if c.IsSet("browser") {
		cfg.Browser = c.String("browser")
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
	if c.IsSet("target") {
		cfg.TargetURL = c.String("target")
	}
	if c.IsSet("title") {
		cfg.TitleContains = c.String("title")
	}
	if c.IsSet("screenshots") {
		cfg.ScreenshotDir = c.String("screenshots")
	}
	if c.IsSet("locators") {
		cfg.LocatorsFile = c.String("locators")
	}
	return cfg, nil
}

// RunCommand returns the run command
func RunCommand() *cli.Command {
	flags := dataFlags()
	flags = append(flags,
		&cli.StringFlag{Name: "driver", Usage: "playwright, selenium or chromedp"},
		&cli.StringFlag{Name: "browser", Usage: "browser the driver launches"},
		&cli.BoolFlag{Name: "headless", Usage: "run without a visible window"},
		&cli.StringFlag{Name: "target", Usage: "start page URL"},
		&cli.StringFlag{Name: "title", Usage: "text the start page title must contain"},
		&cli.StringFlag{Name: "screenshots", Usage: "existing directory for screenshots"},
		&cli.StringFlag{Name: "locators", Usage: "YAML file overriding element ids"},
		&cli.BoolFlag{Name: "no-record", Usage: "do not store the run in the history database"},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Search for the item, select it and add it to the cart",
		Flags: flags,
		Action: func(c *cli.Context) error {
			cfg, err := loadRunConfig(c)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			locators, err := config.LoadLocators(cfg.LocatorsFile)
			if err != nil {
				return err
			}

			var recorder services.RunRecorder = services.NoopRecorder{}
			if !c.Bool("no-record") {
				service, closeDB, err := openHistory()
				switch {
				case errors.Is(err, config.ErrHistoryDisabled):
					log.Debug().Msg("Run history disabled")
				case err != nil:
					log.Warn().Err(err).Msg("Run history unavailable")
				default:
					defer closeDB()
					recorder = service
				}
			}

			run, err := internalcli.RunFlow(c.Context, internalcli.RunDependencies{
				Config:   cfg,
				Locators: locators,
				Source:   dataset.FromConfig(cfg),
				Launcher: browser.Launch,
				Recorder: recorder,
				Out:      c.App.Writer,
			})
			if err != nil {
				return err
			}
			if !run.Passed {
				return fmt.Errorf("run %s failed: %s", run.ID, run.Failure)
			}
			return nil
		},
	}
}

// DataCommand returns the data command
func DataCommand() *cli.Command {
	return &cli.Command{
		Name:  "data",
		Usage: "Load and print the test case",
		Flags: dataFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadRunConfig(c)
			if err != nil {
				return err
			}
			if cfg.DataFile == "" {
				return fmt.Errorf("SHOPFLOW_DATA_FILE is required")
			}

			tc, err := dataset.FromConfig(cfg).Load(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, tc)
			return nil
		},
	}
}

// SampleDataCommand returns the sample-data command
func SampleDataCommand() *cli.Command {
	return &cli.Command{
		Name:  "sample-data",
		Usage: "Write a workbook holding one sample test case",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "workbook to create", Value: "data.xlsx"},
			&cli.StringFlag{Name: "sheet", Value: config.DefaultSheet},
			&cli.StringFlag{Name: "item", Value: "Echo Dot"},
			&cli.StringFlag{Name: "type", Value: "Smart Speaker"},
			&cli.StringFlag{Name: "color", Value: "Charcoal"},
			&cli.StringFlag{Name: "price", Value: "$49.99"},
		},
		Action: func(c *cli.Context) error {
			tc, err := models.NewTestCase(c.String("item"), c.String("type"), c.String("color"), c.String("price"))
			if err != nil {
				return err
			}
			if err := dataset.WriteSample(c.String("out"), c.String("sheet"), tc); err != nil {
				return err
			}
			log.Info().Str("path", c.String("out")).Stringer("test_case", tc).Msg("Sample data written")
			return nil
		},
	}
}

// StoreCommand returns the store command
func StoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Serve the demo storefront",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "listen port"},
			&cli.BoolFlag{Name: "overlay", Usage: "cover the add-to-cart button so native clicks are intercepted"},
			&cli.BoolFlag{Name: "no-warranty", Usage: "skip the protection plan dialog"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.LoadStoreConfig()
			if c.IsSet("port") {
				cfg.Port = c.String("port")
			}
			if c.IsSet("overlay") {
				cfg.CartOverlay = c.Bool("overlay")
			}
			if c.Bool("no-warranty") {
				cfg.WarrantyDialog = false
			}

			store, err := storefront.NewStore(cfg, storefront.DefaultCatalog())
			if err != nil {
				return fmt.Errorf("failed to create storefront: %w", err)
			}

			return internalcli.RunStore(internalcli.StoreDependencies{
				StoreConfig: cfg,
				Handler:     store,
			})
		},
	}
}

// HistoryCommand returns the history command
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: services.DefaultHistoryLimit},
			&cli.StringFlag{Name: "id", Usage: "show a single run"},
		},
		Action: func(c *cli.Context) error {
			service, closeDB, err := openHistory()
			if err != nil {
				return err
			}
			defer closeDB()

			if id := c.String("id"); id != "" {
				run, err := service.Get(id)
				if err != nil {
					return err
				}
				internalcli.PrintSummary(c.App.Writer, run)
				return nil
			}

			runs, err := service.Recent(c.Int("limit"))
			if err != nil {
				return err
			}
			internalcli.PrintHistory(c.App.Writer, runs)
			return nil
		},
	}
}

// openHistory connects to the history database and runs migrations
func openHistory() (services.RunService, func(), error) {
	pgConfig, err := config.LoadPostgresConfig(os.Getenv)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(pgConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}
	return services.NewRunService(repository.NewRunRepository(db)), closeDB, nil
}
