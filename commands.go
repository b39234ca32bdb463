package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tournevent/sameday/pkg/sameday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CLI calls always surface errors instead of printing nothing.
var returnErrors = sameday.WithErrorPolicy(sameday.ErrorPolicyReturn)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in and print the token expiry",
	Args:  cobra.NoArgs,
	RunE:  runAuth,
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the services available to the account",
	Args:  cobra.NoArgs,
	RunE:  runServices,
}

var pickupPointsCmd = &cobra.Command{
	Use:   "pickup-points",
	Short: "List the account's pickup points",
	Args:  cobra.NoArgs,
	RunE:  runPickupPoints,
}

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "Look up cities",
	Args:  cobra.NoArgs,
	RunE:  runCities,
}

var countiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "Look up counties",
	Args:  cobra.NoArgs,
	RunE:  runCounties,
}

var trackCmd = &cobra.Command{
	Use:   "track AWB",
	Short: "Print the status history of an AWB",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrack,
}

var createAWBCmd = &cobra.Command{
	Use:   "create-awb",
	Short: "Create an AWB from a JSON shipment file",
	Args:  cobra.NoArgs,
	RunE:  runCreateAWB,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Fetch services, pickup points and counties in one go",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	pickupPointsCmd.Flags().Int("page", 1, "page number")
	pickupPointsCmd.Flags().Int("per-page", 50, "results per page")

	citiesCmd.Flags().String("name", "", "city name")
	citiesCmd.Flags().String("county", "", "county ID")
	citiesCmd.Flags().String("postal-code", "", "postal code")
	citiesCmd.Flags().String("country-code", "", "ISO country code")
	citiesCmd.Flags().Int("page", 1, "page number")
	citiesCmd.Flags().Int("count-per-page", 50, "results per page")

	countiesCmd.Flags().String("name", "", "county name")
	countiesCmd.Flags().String("country-code", "", "ISO country code")
	countiesCmd.Flags().Int("page", 1, "page number")
	countiesCmd.Flags().Int("count-per-page", 50, "results per page")

	createAWBCmd.Flags().StringP("file", "f", "", "shipment JSON file")
	createAWBCmd.Flags().String("pickup-point", "", "pickup point ID for this shipment")
	createAWBCmd.Flags().String("delivery-interval", "", "delivery window, e.g. 14-17")
	_ = createAWBCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(authCmd, servicesCmd, pickupPointsCmd, citiesCmd,
		countiesCmd, trackCmd, createAWBCmd, catalogCmd)
}

// newCommandClient builds a client for one CLI command. Logs go to stderr.
func newCommandClient(ctx context.Context) (*sameday.Client, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := initLogger(cfg.LogLevel, "stderr")
	if err != nil {
		return nil, nil, err
	}

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
		tracerShutdown = func(context.Context) error { return nil }
	}

	client, err := initClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = tracerShutdown(context.Background())
		_ = logger.Sync()
	}
	return client, cleanup, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withChildren appends the validation details of err, if any.
func withChildren(err error) error {
	if children := sameday.ValidationChildren(err); len(children) > 0 {
		return fmt.Errorf("%w\nvalidation errors: %s", err, children)
	}
	return err
}

func runAuth(cmd *cobra.Command, args []string) error {
	client, cleanup, err := newCommandClient(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := client.Authenticate(cmd.Context()); err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{
		"authenticated": true,
		"expiresAt":     client.Session().ExpiresAt(),
	})
}

func runServices(cmd *cobra.Command, args []string) error {
	client, cleanup, err := newCommandClient(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	services, err := client.GetServices(cmd.Context(), returnErrors)
	if err != nil {
		return withChildren(err)
	}
	return printJSON(cmd, services)
}

func runPickupPoints(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")

	client, cleanup, err := newCommandClient(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	points, err := client.GetPickupPoints(cmd.Context(), page, perPage, returnErrors)
	if err != nil {
		return withChildren(err)
	}
	return printJSON(cmd, points)
}

// stringFlag returns the flag value only when the user set it.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func runCities(cmd *cobra.Command, args []string) error {
	params := &sameday.CityQueryParams{
		Name:         stringFlag(cmd, "name"),
		County:       stringFlag(cmd, "county"),
		PostalCode:   stringFlag(cmd, "postal-code"),
		CountryCode:  stringFlag(cmd, "country-code"),
		Page:         intFlag(cmd, "page"),
		CountPerPage: intFlag(cmd, "count-per-page"),
	}

	client, cleanup, err := newCommandClient(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	cities, err := client.GetCities(cmd.Context(), params, returnErrors)
	if err != nil {
		return withChildren(err)
	}
	return printJSON(cmd, cities)
}

func runCounties(cmd *cobra.Command, args []string) error {
	params := &sameday.CountyQueryParams{
		Name:         stringFlag(cmd, "name"),
		CountryCode:  stringFlag(cmd, "country-code"),
		Page:         intFlag(cmd, "page"),
		CountPerPage: intFlag(cmd, "count-per-page"),
	}

	client, cleanup, err := newCommandClient(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	counties, err := client.GetCounties(cmd.Context(), params, returnErrors)
	if err != nil {
		return withChildren(err)
	}
	return printJSON(cmd, counties)
}

func runTrack(cmd *cobra.Command, args []string) error {
	client, cleanup, err := newCommandClient(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	status, err := client.TrackShipment(cmd.Context(), args[0], returnErrors)
	if err != nil {
		return withChildren(err)
	}
	return printJSON(cmd, status)
}

// readShipment decodes a shipment file and applies the command flags.
func readShipment(cmd *cobra.Command) (*sameday.ShipmentRequest, error) {
	path, _ := cmd.Flags().GetString("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shipment: %w", err)
	}

	var req sameday.ShipmentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decoding shipment %s: %w", path, err)
	}

	if label := stringFlag(cmd, "delivery-interval"); label != nil {
		interval, err := sameday.ParseDeliveryInterval(*label)
		if err != nil {
			return nil, err
		}
		req.DeliveryInterval = &interval
	}
	if req.ClientInternalReference == "" {
		req.ClientInternalReference = uuid.NewString()
	}
	return &req, nil
}

func runCreateAWB(cmd *cobra.Command, args []string) error {
	req, err := readShipment(cmd)
	if err != nil {
		return err
	}

	client, cleanup, err := newCommandClient(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if id := stringFlag(cmd, "pickup-point"); id != nil {
		client.SetPickupPoint(*id)
	}

	awb, err := client.CreateShipment(cmd.Context(), req, returnErrors)
	if err != nil {
		return withChildren(err)
	}
	return printJSON(cmd, map[string]any{
		"clientInternalReference": req.ClientInternalReference,
		"awb":                     awb,
	})
}

type catalog struct {
	Services     []sameday.ServiceType        `json:"services"`
	PickupPoints *sameday.PickupPointResponse `json:"pickupPoints"`
	Counties     *sameday.GetCountiesResponse `json:"counties"`
}

// fetchCatalog logs in once, then loads the three lookups concurrently.
func fetchCatalog(ctx context.Context, client *sameday.Client) (*catalog, error) {
	if _, err := client.Authenticate(ctx); err != nil {
		return nil, err
	}

	var out catalog
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		services, err := client.GetServices(ctx, returnErrors)
		out.Services = services
		return err
	})
	g.Go(func() error {
		points, err := client.GetPickupPoints(ctx, 1, 50, returnErrors)
		out.PickupPoints = points
		return err
	})
	g.Go(func() error {
		counties, err := client.GetCounties(ctx, nil, returnErrors)
		out.Counties = counties
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func runCatalog(cmd *cobra.Command, args []string) error {
	client, cleanup, err := newCommandClient(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := fetchCatalog(cmd.Context(), client)
	if err != nil {
		return withChildren(err)
	}
	return printJSON(cmd, out)
}
