package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/domain"
	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	if err := newApp().Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "equiptrack",
		Usage: "Equipment tracking server and CLI",
		Commands: []*cli.Command{
			serverCommand(),
			assetsCommand(),
			employeesCommand(),
			dashboardCommand(),
			configCommand(),
		},
	}
}

func assetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "assets",
		Usage: "Devices and accessories",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List assets, filtered and grouped locally",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "case-insensitive match on name or serial number"},
					&cli.StringFlag{Name: "status", Value: string(domain.StatusAll), Usage: "All, Available, In Use or Maintenance"},
					&cli.StringFlag{Name: "category", Value: categoryMain, Usage: "main, accessories or all"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					status, err := domain.ParseStatusFilter(c.String("status"))
					if err != nil {
						return err
					}
					var assets []domain.Asset
					if err := doAssetsList(ctx, cfg, &assets); err != nil {
						return err
					}
					selected, err := selectCategory(assets, c.String("category"))
					if err != nil {
						return err
					}
					selected = domain.Filter(selected, c.String("q"), status)
					if c.Bool("json") {
						return printJSON(selected)
					}
					printAssetGroups(domain.GroupByType(selected, domain.NewGroupExpansion()))
					return nil
				},
			},
			{
				Name:  "save",
				Usage: "Create (no --id) or update an asset; on update only the given flags change",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Usage: "asset id to update"},
					&cli.StringFlag{Name: "name", Usage: "required when creating"},
					&cli.StringFlag{Name: "type", Usage: "asset type (default Laptop on create)"},
					&cli.StringFlag{Name: "status", Usage: "Available, In Use or Maintenance (default Available on create)"},
					&cli.StringFlag{Name: "serial"},
					&cli.StringFlag{Name: "assigned-to", Usage: "employee full name; kept only for main assets in use"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					form, err := assetFormFromFlags(ctx, cfg, c)
					if err != nil {
						return err
					}
					var out domain.Asset
					if err := doAssetsSave(ctx, cfg, form, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAsset(out)
					return nil
				},
			},
			assetActionCommand("delete", "Delete an asset", func(ctx context.Context, cfg cliConfig, id uint) error {
				if err := doAssetsDelete(ctx, cfg, id); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(stdout, "deleted asset %d\n", id)
				return nil
			}),
			assetActionCommand("checkin", "Return an asset to inventory", func(ctx context.Context, cfg cliConfig, id uint) error {
				var out domain.Asset
				if err := doAssetsAction(ctx, cfg, "checkin", id, &out); err != nil {
					return err
				}
				printAsset(out)
				return nil
			}),
			assetActionCommand("maintenance", "Mark an asset as broken or in maintenance", func(ctx context.Context, cfg cliConfig, id uint) error {
				var out domain.Asset
				if err := doAssetsAction(ctx, cfg, "maintenance", id, &out); err != nil {
					return err
				}
				printAsset(out)
				return nil
			}),
			assetActionCommand("history", "Show an asset's history, newest first", func(ctx context.Context, cfg cliConfig, id uint) error {
				var out []domain.HistoryEvent
				if err := doAssetsHistory(ctx, cfg, id, &out); err != nil {
					return err
				}
				printHistory(out)
				return nil
			}),
			{
				Name:  "import",
				Usage: "Import employees and assets from a JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Required: true, Usage: "path to the import document"},
					&cli.BoolFlag{Name: "dry-run", Usage: "validate only"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					data, err := os.ReadFile(c.String("file"))
					if err != nil {
						return err
					}
					batch, err := parseImport(ctx, data)
					if err != nil {
						return err
					}
					if c.Bool("dry-run") {
						_, _ = fmt.Fprintf(stdout, "valid: %d employees, %d assets\n", len(batch.Employees), len(batch.Assets))
						return nil
					}
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					res, err := runImport(ctx, cfg, batch)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(stdout, "imported %d employees, %d assets\n", res.Employees, res.Assets)
					return nil
				},
			},
		},
	}
}

func assetActionCommand(name, usage string, run func(ctx context.Context, cfg cliConfig, id uint) error) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "id", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return run(ctx, cfg, c.Uint("id"))
		},
	}
}

func employeesCommand() *cli.Command {
	return &cli.Command{
		Name:  "employees",
		Usage: "Employee directory",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List employees with their assigned devices",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.DirectoryEntry
					if err := doEmployeesDirectory(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printDirectory(out)
					return nil
				},
			},
			{
				Name:  "save",
				Usage: "Create (no --id) or update an employee",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id"},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "role"},
					&cli.StringFlag{Name: "department"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					form := application.EmployeeForm{
						ID:         c.Uint("id"),
						FullName:   c.String("name"),
						Role:       c.String("role"),
						Department: c.String("department"),
					}
					var out domain.Employee
					if err := doEmployeesSave(ctx, cfg, form, &out); err != nil {
						return err
					}
					printEmployee(out)
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete an employee; their assets keep the stored name",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doEmployeesDelete(ctx, cfg, c.Uint("id")); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(stdout, "deleted employee %d\n", c.Uint("id"))
					return nil
				},
			},
		},
	}
}

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Main asset counters",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			var assets []domain.Asset
			if err := doAssetsList(ctx, cfg, &assets); err != nil {
				return err
			}
			summary := domain.Summarize(assets)
			if c.Bool("json") {
				return printJSON(summary)
			}
			printSummary(summary)
			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or change how the CLI reaches the server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "transport", Usage: "uds or http"},
			&cli.StringFlag{Name: "server", Usage: "server base URL for http transport"},
			&cli.StringFlag{Name: "socket", Usage: "unix socket path for uds transport"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			changed := false
			if c.IsSet("transport") {
				cfg.Transport = c.String("transport")
				changed = true
			}
			if c.IsSet("server") {
				cfg.Server = c.String("server")
				changed = true
			}
			if c.IsSet("socket") {
				cfg.Socket = c.String("socket")
				changed = true
			}
			if changed {
				if err := saveConfig(cfg); err != nil {
					return err
				}
			}
			printKV([][2]string{
				{"transport", cfg.Transport},
				{"server", cfg.Server},
				{"socket", cfg.Socket},
			})
			return nil
		},
	}
}

const (
	categoryMain        = "main"
	categoryAccessories = "accessories"
	categoryAll         = "all"
)

func selectCategory(assets []domain.Asset, category string) ([]domain.Asset, error) {
	mainAssets, accessories := domain.Classify(assets)
	switch category {
	case categoryMain, "":
		return mainAssets, nil
	case categoryAccessories:
		return accessories, nil
	case categoryAll:
		return assets, nil
	}
	return nil, fmt.Errorf("unknown category %q", category)
}

// assetFormFromFlags builds the form for `assets save`. An update starts from
// the stored row so flags left off keep their current values.
func assetFormFromFlags(ctx context.Context, cfg cliConfig, c *cli.Command) (application.AssetForm, error) {
	form := application.AssetForm{Type: "Laptop", Status: string(domain.StatusAvailable)}
	if id := c.Uint("id"); id != 0 {
		var current domain.Asset
		if err := doAssetsGet(ctx, cfg, id, &current); err != nil {
			return application.AssetForm{}, err
		}
		form = application.FormFromAsset(current)
	} else if !c.IsSet("name") {
		return application.AssetForm{}, errors.New("--name is required when creating an asset")
	}

	for flag, field := range map[string]*string{
		"name":        &form.Name,
		"type":        &form.Type,
		"status":      &form.Status,
		"serial":      &form.SerialNumber,
		"assigned-to": &form.AssignedTo,
	} {
		if c.IsSet(flag) {
			*field = c.String(flag)
		}
	}
	return form, nil
}

func jsonMarshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
