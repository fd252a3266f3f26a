package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/eivy/irgen"
	"github.com/eivy/irgen/hass"
	"github.com/eivy/irgen/irdb"
	"github.com/eivy/irgen/logging"
	"github.com/eivy/irgen/metrics"
	"github.com/eivy/irgen/mqtt"
	"github.com/eivy/irgen/protocol"
	"github.com/eivy/irgen/server"
)

var cmd Cmd

// Cmd is the command line arguments.
type Cmd struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string
	Input      irgen.Input
	Output     irgen.Output
	// Data is a comma separated list of protocol parameters or encoded
	// input. Positional arguments are appended to it.
	Data    string
	Repeats int
	// IRDBPath is the table downloaded for the irdb input.
	IRDBPath string
	// Publish sends every converted code to the MQTT broker.
	Publish bool
	Verbose bool
}

var rootCmd = &cobra.Command{
	Use:   "irgen [flags] [data...]",
	Short: "Convert IR remote codes between protocols and blaster formats",
	Long: "Convert IR remote codes between protocol parameters, raw timings and the\n" +
		"Broadlink, Pronto and Nature Remo formats.\n\n" +
		"Inputs: " + strings.Join(irgen.InputNames(), ", ") + "\n\n" +
		"Flags must come before the data, so negative protocol arguments can be\n" +
		"given directly:\n\n" +
		"  irgen -i nec1 -o pronto 4 -1 8",
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	Run: func(rawCmd *cobra.Command, args []string) {
		if err := runConvert(rawCmd, cmd, args); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversions over HTTP and MQTT",
	Run: func(rawCmd *cobra.Command, _ []string) {
		if err := runServe(cmd); err != nil {
			var interrupted Interrupted
			if errors.As(err, &interrupted) {
				return
			}

			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cmd.ConfigPath, "config", "c", "", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&cmd.Verbose, "verbose", "v", false, "Log debug messages")

	cmd.Input = irgen.Input{Source: irgen.SourceRaw}
	rootCmd.Flags().VarP(&cmd.Input, "input", "i", "Input kind: a protocol name or raw, irdb, broadlink, broadlink_base64, pronto, remo")
	rootCmd.Flags().VarP(&cmd.Output, "output", "o", "Output kind: raw, broadlink, broadlink_base64, broadlink_hass, pronto, remo, rc5, rc6")
	rootCmd.Flags().StringVarP(&cmd.Data, "data", "d", "", "Comma separated input data")
	rootCmd.Flags().IntVarP(&cmd.Repeats, "repeats", "r", 1, "Number of times the signal is repeated")
	rootCmd.Flags().StringVarP(&cmd.IRDBPath, "path", "p", "", "IRDB table path, e.g. Sony/Unknown_RM-887/1,-1.csv")
	rootCmd.Flags().BoolVar(&cmd.Publish, "publish", false, "Publish every converted code to MQTT")
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger.
func setup(cmd Cmd) (*irgen.Config, *zap.SugaredLogger, error) {
	cfg, err := irgen.LoadConfig(cmd.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, level, err := logging.Init(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	return cfg, log, nil
}

func newConverter(cfg *irgen.Config, log *zap.SugaredLogger, collector *metrics.Collector) *irgen.Converter {
	fetcher := irdb.NewClient(
		irdb.WithBaseURL(cfg.IRDB.BaseURL),
		irdb.WithHTTPClient(&http.Client{Timeout: cfg.IRDB.Timeout}),
		irdb.WithMaxTries(cfg.IRDB.MaxTries),
		irdb.WithLog(log),
	)

	opts := []irgen.ConverterOption{
		irgen.WithLog(log),
		irgen.WithFetcher(fetcher),
		irgen.WithProntoBase(cfg.Convert.ProntoBase),
		irgen.WithRemoFreq(cfg.Convert.RemoFreq),
	}
	if collector != nil {
		opts = append(opts, irgen.WithMetrics(collector))
	}
	return irgen.NewConverter(opts...)
}

func runConvert(rawCmd *cobra.Command, cmd Cmd, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	req := irgen.Request{
		Input:   cfg.Convert.Input,
		Output:  cfg.Convert.Output,
		Repeats: cfg.Convert.Repeats,
		Path:    cmd.IRDBPath,
	}
	flags := rawCmd.Flags()
	if flags.Changed("input") {
		req.Input = cmd.Input
	}
	if flags.Changed("output") {
		req.Output = cmd.Output
	}
	if flags.Changed("repeats") {
		req.Repeats = cmd.Repeats
	}
	if cmd.Data != "" {
		req.Data = strings.Split(cmd.Data, ",")
	}
	req.Data = append(req.Data, args...)

	ctx := context.Background()
	c := newConverter(cfg, log, nil)
	result, err := c.Convert(ctx, req)
	if err != nil {
		return err
	}

	if cmd.Publish {
		if err := publish(ctx, cfg.MQTT, log, c, result.Codes, req.Output); err != nil {
			return err
		}
	}

	for _, line := range result.Lines {
		fmt.Println(line)
	}
	return nil
}

// publish sends each code to <prefix>/code/<entity>. Home Assistant output
// is published as the base64 packet of each switch.
func publish(ctx context.Context, cfg mqtt.Config, log *zap.SugaredLogger, c *irgen.Converter, codes []irgen.Code, output irgen.Output) error {
	if !cfg.Enabled() {
		return errors.New("--publish needs an MQTT broker")
	}
	if _, ok := output.Decoder(); ok {
		return fmt.Errorf("output %s cannot be published", output)
	}
	if output == irgen.OutputBroadlinkHass {
		output = irgen.OutputBroadlinkBase64
	}

	client := mqtt.NewClient(cfg, log)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Disconnect()

	for _, code := range codes {
		payload, err := c.RenderCode(code.Signal, output)
		if err != nil {
			return fmt.Errorf("%s: %w", code.Name, err)
		}
		if err := client.PublishCode(ctx, hass.EntityName(code.Name), payload); err != nil {
			return err
		}
	}
	return nil
}

func runServe(cmd Cmd) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	collector := metrics.NewCollector()
	c := newConverter(cfg, log, collector)

	protocols := make(map[string]bool)
	for _, name := range protocol.Names() {
		p, err := protocol.Parse(name)
		if err != nil {
			return err
		}
		protocols[name] = p.CanDecode()
	}

	var (
		client *mqtt.Client
		conn   metrics.Connection
	)
	if cfg.MQTT.Enabled() {
		client = mqtt.NewClient(cfg.MQTT, log)
		conn = client
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collector, metrics.NewExporter(protocols, conn))

	srv := server.NewServer(cfg.HTTP, c,
		server.WithLog(log),
		server.WithCollector(collector),
		server.WithGatherer(registry),
	)

	ctx := context.Background()
	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		return srv.Run(ctx)
	})
	if client != nil {
		wg.Go(func() error {
			if err := client.Connect(ctx); err != nil {
				return err
			}
			defer client.Disconnect()

			if err := client.SubscribeRequests(ctx, c); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		})
	}
	wg.Go(func() error {
		err := WaitInterrupted(ctx)
		log.Infof("caught signal: %v", err)
		return err
	})

	return wg.Wait()
}

type Interrupted struct {
	os.Signal
}

func (m Interrupted) Error() string {
	return m.String()
}

// WaitInterrupted blocks until either SIGINT or SIGTERM signal is received or
// the provided context is canceled.
func WaitInterrupted(ctx context.Context) error {
	ch := make(chan os.Signal, 1)

	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case v := <-ch:
		return Interrupted{Signal: v}
	case <-ctx.Done():
		return ctx.Err()
	}
}
