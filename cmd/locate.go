package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brewline/maitre/app"
	"github.com/brewline/maitre/config"
	"github.com/brewline/maitre/core/geo"
	"github.com/brewline/maitre/core/match"
	"github.com/brewline/maitre/core/zone"
	"github.com/brewline/maitre/infra/logger"
)

var (
	planPath    string
	locLat      float64
	locLng      float64
	uncertainty float64
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Resolve a GPS fix against a floor plan file",
	RunE:  locate,
}

func init() {
	locateCmd.Flags().StringVarP(&planPath, "plan", "p", "floor.json", "floor plan file")
	locateCmd.Flags().Float64Var(&locLat, "lat", 0, "latitude of the fix")
	locateCmd.Flags().Float64Var(&locLng, "lng", 0, "longitude of the fix")
	locateCmd.Flags().Float64VarP(&uncertainty, "uncertainty", "u", 0, "GPS accuracy in meters (0 uses the configured default)")
	rootCmd.AddCommand(locateCmd)
}

func locate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	plan, err := app.LoadFloorPlan(planPath)
	if err != nil {
		return err
	}
	point, err := geo.NewPoint(locLat, locLng)
	if err != nil {
		return err
	}

	zones, err := zone.Classify(point, plan.Zones)
	if err != nil {
		return err
	}
	for _, z := range zones {
		cmd.Printf("zone %s (%s)\n", z.ID, z.Shape)
	}
	if len(zones) == 0 {
		if nearest, ok, err := zone.Nearest(point, plan.Zones, 100); err != nil {
			return err
		} else if ok {
			cmd.Printf("outside all zones, nearest is %s\n", nearest.ID)
		} else {
			cmd.Println("outside all zones")
		}
	}

	ranker, err := match.NewRanker(cfg.Match, logger.New("locate"))
	if err != nil {
		return err
	}
	res, err := ranker.Rank(point, uncertainty, plan.Tables)
	if err != nil {
		return err
	}
	switch res.Decision {
	case match.DecisionMatched:
		cmd.Printf("matched table %s at %.1fm (confidence %s)\n",
			res.Match.Table.ID, res.Match.DistanceMeters, res.Confidence)
		for _, alt := range res.Alternates {
			cmd.Printf("  alternate %s at %.1fm\n", alt.Table.ID, alt.DistanceMeters)
		}
	case match.DecisionAmbiguous:
		cmd.Println("ambiguous fix, candidates:")
		for _, c := range res.Candidates {
			cmd.Printf("  %s at %.1fm\n", c.Table.ID, c.DistanceMeters)
		}
	case match.DecisionNoMatch:
		cmd.Printf("no match: %s\n", res.Reason)
	}
	return nil
}
