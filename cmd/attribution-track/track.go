package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jdziat/attribution-go"
)

// requestFlags are the optional TrackingRequest fields exposed as flags.
type requestFlags struct {
	clickID        string
	customerID     string
	customerEmail  string
	customerName   string
	customerAvatar string
	props          []string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.clickID, "click-id", "", "click identifier (default: generated or stored)")
	fs.StringVar(&f.customerID, "customer-id", "", "customer identifier")
	fs.StringVar(&f.customerEmail, "customer-email", "", "customer email")
	fs.StringVar(&f.customerName, "customer-name", "", "customer display name")
	fs.StringVar(&f.customerAvatar, "customer-avatar", "", "customer avatar URL")
	fs.StringArrayVarP(&f.props, "prop", "p", nil, "custom property key=value; JSON values are decoded (repeatable)")
}

// request converts the flags to a TrackingRequest.
func (f *requestFlags) request() (*attribution.TrackingRequest, error) {
	props, err := parseProps(f.props)
	if err != nil {
		return nil, err
	}
	return &attribution.TrackingRequest{
		ClickID:          f.clickID,
		CustomerID:       f.customerID,
		CustomerEmail:    f.customerEmail,
		CustomerName:     f.customerName,
		CustomerAvatar:   f.customerAvatar,
		CustomProperties: props,
	}, nil
}

// parseProps parses key=value pairs. Values that are valid JSON are decoded,
// so amount=49.99 is a number and tags=["a","b"] a list; anything else is a string.
func parseProps(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	props := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q: want key=value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		props[key] = v
	}
	return props, nil
}

func newClickCmd(flags *globalFlags) *cobra.Command {
	rf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "click <link-id>",
		Short: "Record a link click and remember its click id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := rf.request()
			if err != nil {
				return err
			}
			return withApp(flags, func(a *app) error {
				res := a.client.TrackClick(cmd.Context(), args[0], data)
				return report(cmd.OutOrStdout(), res, res.Success)
			})
		},
	}
	rf.register(cmd)
	return cmd
}

func newConversionCmd(flags *globalFlags) *cobra.Command {
	rf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "conversion <event-name>",
		Short: "Record a conversion attributed to the stored click",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := rf.request()
			if err != nil {
				return err
			}
			return withApp(flags, func(a *app) error {
				res := a.client.TrackConversion(cmd.Context(), args[0], data)
				return report(cmd.OutOrStdout(), res, res.Success)
			})
		},
	}
	rf.register(cmd)
	return cmd
}

func newEventCmd(flags *globalFlags) *cobra.Command {
	rf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "event <event-type> <event-name>",
		Short: "Record a custom event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := rf.request()
			if err != nil {
				return err
			}
			return withApp(flags, func(a *app) error {
				res := a.client.TrackEvent(cmd.Context(), args[0], args[1], data)
				return report(cmd.OutOrStdout(), res, res.Success)
			})
		},
	}
	rf.register(cmd)
	return cmd
}

func newFingerprintCmd(flags *globalFlags) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the device fingerprint of the configured environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(a *app) error {
				out := cmd.OutOrStdout()
				if !verbose {
					_, err := fmt.Fprintln(out, a.client.GetFingerprint())
					return err
				}
				fp := a.client.Fingerprint()
				stored, _ := a.client.StoredClickID(cmd.Context())
				return writeJSON(out, map[string]any{
					"fingerprint":        fp.String(),
					"screen_fingerprint": fp.ScreenFingerprint(),
					"device_type":        fp.DeviceClass,
					"stored_click_id":    stored,
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print all fingerprint fields as JSON")
	return cmd
}

// withApp loads the configuration, builds an app and runs fn with it.
func withApp(flags *globalFlags, fn func(*app) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// errNotDelivered makes the command exit non-zero when the API rejected an event.
var errNotDelivered = errors.New("event was not delivered")

// report prints result as JSON and returns errNotDelivered when ok is false.
func report(out io.Writer, result any, ok bool) error {
	if err := writeJSON(out, result); err != nil {
		return err
	}
	if !ok {
		return errNotDelivered
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
