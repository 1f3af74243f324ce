package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-field-mesh/internal/app"
	"github.com/mr1hm/go-field-mesh/internal/intake"
	"github.com/mr1hm/go-field-mesh/internal/models"
)

func (r *runner) submitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Record a survey or aid distribution (FIELD role)",
	}
	cmd.AddCommand(r.submitDisasterCmd(), r.submitAgricultureCmd(), r.submitAidCmd())
	return cmd
}

// gpsFlags holds an optional fix; it is used only when both values are given.
type gpsFlags struct {
	lat, lng float64
}

func (g *gpsFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&g.lat, "lat", 0, "GPS latitude")
	cmd.Flags().Float64Var(&g.lng, "lng", 0, "GPS longitude")
}

func (g *gpsFlags) point(cmd *cobra.Command) *models.GeoPoint {
	if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
		return nil
	}
	return &models.GeoPoint{Lat: g.lat, Lng: g.lng}
}

func formInt(s string) intake.FormInt {
	return intake.FormInt(intake.ParseInt(s))
}

func (r *runner) submitDisasterCmd() *cobra.Command {
	var (
		digiPin, people, injured, critical, dead, trapped string
		disasterType, area, status, photo                 string
		gps                                               gpsFlags
	)

	cmd := &cobra.Command{
		Use:   "disaster",
		Short: "Record a disaster survey",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := intake.DisasterForm{
				DigiPin:        digiPin,
				GPS:            gps.point(cmd),
				PeopleAffected: formInt(people),
				Injured:        formInt(injured),
				Critical:       formInt(critical),
				Dead:           formInt(dead),
				Trapped:        formInt(trapped),
				DisasterType:   disasterType,
				AreaCondition:  area,
				LocationStatus: status,
				PhotoEvidence:  photo,
			}
			return r.withApp(cmd.Context(), func(a *app.App) error {
				if err := requireRole(a, models.RoleField); err != nil {
					return err
				}
				s, err := a.Intake.SubmitDisaster(cmd.Context(), form)
				if err != nil {
					return err
				}
				if r.jsonOutput {
					return outputJSON(cmd, s)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s (priority %d, trust %d %s)\n", s.SurveyID, s.Priority(), s.TrustScore, s.TrustStatus)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&digiPin, "digipin", "", "location code")
	f.StringVar(&people, "people", "0", "people affected")
	f.StringVar(&injured, "injured", "0", "injured count")
	f.StringVar(&critical, "critical", "0", "critical count")
	f.StringVar(&dead, "dead", "0", "dead count")
	f.StringVar(&trapped, "trapped", "0", "trapped count")
	f.StringVar(&disasterType, "type", "", "disaster type (default Flood)")
	f.StringVar(&area, "area", "", "area condition notes")
	f.StringVar(&status, "status", "", "location status: Field, Shelter, Hospital or Evacuated (default Field)")
	f.StringVar(&photo, "photo", "", "photo evidence reference")
	gps.register(cmd)
	return cmd
}

func (r *runner) submitAgricultureCmd() *cobra.Command {
	var (
		digiPin, crop, cause, damage string
		gps                          gpsFlags
	)

	cmd := &cobra.Command{
		Use:   "agriculture",
		Short: "Record a crop damage survey",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := intake.AgricultureForm{
				DigiPin:       digiPin,
				GPS:           gps.point(cmd),
				Crop:          crop,
				DamageCause:   cause,
				DamagePercent: formInt(damage),
			}
			return r.withApp(cmd.Context(), func(a *app.App) error {
				if err := requireRole(a, models.RoleField); err != nil {
					return err
				}
				s, err := a.Intake.SubmitAgriculture(cmd.Context(), form)
				if err != nil {
					return err
				}
				if r.jsonOutput {
					return outputJSON(cmd, s)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s (trust %d %s)\n", s.SurveyID, s.TrustScore, s.TrustStatus)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&digiPin, "digipin", "", "location code")
	f.StringVar(&crop, "crop", "", "crop name")
	f.StringVar(&cause, "cause", "", "damage cause")
	f.StringVar(&damage, "damage", "0", "damage percent")
	gps.register(cmd)
	return cmd
}

func (r *runner) submitAidCmd() *cobra.Command {
	var digiPin, aidType, quantity string

	cmd := &cobra.Command{
		Use:   "aid",
		Short: "Record an aid distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := intake.AidForm{DigiPin: digiPin, AidType: aidType, Quantity: formInt(quantity)}
			return r.withApp(cmd.Context(), func(a *app.App) error {
				if err := requireRole(a, models.RoleField); err != nil {
					return err
				}
				d, err := a.Intake.SubmitAid(cmd.Context(), form)
				if err != nil {
					return err
				}
				if r.jsonOutput {
					return outputJSON(cmd, d)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s (%d x %s, %s)\n", d.AidID, d.Quantity, d.AidType, verifiedText(d.Verified))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&digiPin, "digipin", "", "location code")
	f.StringVar(&aidType, "type", "", "aid type")
	f.StringVar(&quantity, "quantity", "0", "quantity handed out")
	return cmd
}

func verifiedText(v bool) string {
	if v {
		return "verified"
	}
	return "pending"
}
