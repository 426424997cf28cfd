package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/cli/config"
	"github.com/secmon-lab/iract/pkg/domain/model"
	"github.com/secmon-lab/iract/pkg/usecase"
	"github.com/secmon-lab/iract/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// errPromptAborted is returned when the operator interrupts a prompt
var errPromptAborted = goerr.New("prompt aborted")

// prompter asks the operator for values that were not given as flags
type prompter interface {
	Input(message, defaultValue string) (string, error)
	Confirm(message string) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, defaultValue string) (string, error) {
	var out string
	prompt := &survey.Input{Message: message, Default: defaultValue}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(survey.Required)); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Confirm(message string) (bool, error) {
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errPromptAborted
	}
	return goerr.Wrap(err, "prompt failed")
}

// templateInput fills name and url from the prompter when they are empty.
// Defaults are offered from current, which may be nil.
func templateInput(p prompter, name, url string, current *model.Template) (string, string, error) {
	var defName, defURL string
	if current != nil {
		defName, defURL = current.Name, current.URL
	}

	if name == "" {
		v, err := p.Input("Template name:", defName)
		if err != nil {
			return "", "", err
		}
		name = v
	}
	if url == "" {
		v, err := p.Input("Template URL:", defURL)
		if err != nil {
			return "", "", err
		}
		url = v
	}
	return name, url, nil
}

func printTemplates(w io.Writer, templates []*model.Template) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tNAME\tURL"); err != nil {
		return goerr.Wrap(err, "failed to write header")
	}
	for _, t := range templates {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\n", t.ID, t.Name, t.URL); err != nil {
			return goerr.Wrap(err, "failed to write template", goerr.V(model.TemplateIDKey, t.ID))
		}
	}
	if err := tw.Flush(); err != nil {
		return goerr.Wrap(err, "failed to flush output")
	}
	return nil
}

func cmdTemplate() *cli.Command {
	var repoCfg config.Repository
	var p prompter = surveyPrompter{}

	// withTemplates opens the repository for the duration of one subcommand
	withTemplates := func(ctx context.Context, fn func(uc *usecase.TemplateUseCase) error) error {
		repo, err := repoCfg.Configure(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to initialize repository")
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logging.Default().Error("failed to close repository", "error", err.Error())
			}
		}()
		return fn(usecase.NewTemplateUseCase(repo))
	}

	var order string
	var name, url string
	var id int64
	var yes bool

	nameFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "name", Usage: "Template name (prompted when omitted)", Destination: &name}
	}
	urlFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "url", Usage: "Template URL (prompted when omitted)", Destination: &url}
	}
	idFlag := func() cli.Flag {
		return &cli.Int64Flag{Name: "id", Usage: "Template ID", Required: true, Destination: &id}
	}

	return &cli.Command{
		Name:    "template",
		Aliases: []string{"t"},
		Usage:   "Manage saved templates",
		Flags:   repoCfg.Flags(),
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved templates",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "order",
						Usage:       "Sort key [name|id]",
						Value:       string(model.TemplateOrderID),
						Destination: &order,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withTemplates(ctx, func(uc *usecase.TemplateUseCase) error {
						templates, err := uc.List(ctx, model.ParseTemplateOrder(order))
						if err != nil {
							return err
						}
						return printTemplates(c.Root().Writer, templates)
					})
				},
			},
			{
				Name:  "add",
				Usage: "Save a new template",
				Flags: []cli.Flag{nameFlag(), urlFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					n, u, err := templateInput(p, name, url, nil)
					if err != nil {
						return err
					}
					return withTemplates(ctx, func(uc *usecase.TemplateUseCase) error {
						created, err := uc.Create(ctx, n, u)
						if err != nil {
							return err
						}
						logging.Default().Info("Template saved", "id", created.ID, "name", created.Name)
						return nil
					})
				},
			},
			{
				Name:  "update",
				Usage: "Change the name or URL of a template",
				Flags: []cli.Flag{idFlag(), nameFlag(), urlFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withTemplates(ctx, func(uc *usecase.TemplateUseCase) error {
						current, err := uc.Get(ctx, id)
						if err != nil {
							return err
						}
						n, u, err := templateInput(p, name, url, current)
						if err != nil {
							return err
						}
						updated, err := uc.Update(ctx, id, n, u)
						if err != nil {
							return err
						}
						logging.Default().Info("Template updated", "id", updated.ID, "name", updated.Name)
						return nil
					})
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a template",
				Flags: []cli.Flag{
					idFlag(),
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation", Destination: &yes},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if !yes {
						ok, err := p.Confirm(fmt.Sprintf("Delete template %d?", id))
						if err != nil {
							return err
						}
						if !ok {
							return nil
						}
					}
					return withTemplates(ctx, func(uc *usecase.TemplateUseCase) error {
						if err := uc.Delete(ctx, id); err != nil {
							return err
						}
						logging.Default().Info("Template deleted", "id", id)
						return nil
					})
				},
			},
		},
	}
}
