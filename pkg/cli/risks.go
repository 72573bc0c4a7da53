package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/riskdb"
)

func cmdRisks() *cli.Command {
	return &cli.Command{
		Name:  "risks",
		Usage: "Print the baseline risk catalog",
		Action: func(ctx context.Context, c *cli.Command) error {
			risks, err := riskdb.Baseline(time.Now().UTC())
			if err != nil {
				return err
			}

			header := color.New(color.Bold)
			domainColors := map[model.Domain]*color.Color{
				model.DomainPhysical:    color.New(color.FgGreen),
				model.DomainStructural:  color.New(color.FgYellow),
				model.DomainDigital:     color.New(color.FgCyan),
				model.DomainOperational: color.New(color.FgMagenta),
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, header.Sprint("ID\tDOMAIN\tBASELINE\tCONFIDENCE\tNAME"))
			for _, risk := range risks {
				domain := string(risk.Domain)
				if dc, ok := domainColors[risk.Domain]; ok {
					domain = dc.Sprint(domain)
				}
				fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%s\t%s\n",
					risk.ID, domain, risk.ProbabilityBaseline, risk.ConfidenceLevel, risk.Name)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\n%d risks across 4 domains\n", len(risks))
			return nil
		},
	}
}
