// Command sweep runs a grid of design targets through the Wing/Ray pipeline
// and writes the resulting design table to XLSX (and optionally TSV).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RMahshie/genesis/internal/estimator"
	"github.com/RMahshie/genesis/internal/pipeline"
	"github.com/RMahshie/genesis/internal/storage"
	"github.com/RMahshie/genesis/internal/sweep"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	flags := pflag.NewFlagSet("sweep", pflag.ExitOnError)
	flags.String("wing", "model/genesis_wing.json", "Wing artifact (path or s3://bucket/key)")
	flags.String("ray", "model/genesis_ray.json", "Ray artifact (path or s3://bucket/key)")
	flags.String("variant", pipeline.DefaultVariant, "Range table variant (A, B or C)")
	flags.Float64("freq-step", 0.5, "Frequency step in GHz")
	flags.Float64("s11-step", 10, "S11 step in dB")
	flags.Float64("bw-step", 1, "Bandwidth step in GHz")
	flags.Int("workers", 0, "Concurrent predictions (0 = GOMAXPROCS)")
	flags.String("out", "sweep.xlsx", "XLSX output file (- for stdout)")
	flags.String("tsv", "", "Optional TSV output file")
	flags.String("s3-endpoint", "", "S3 endpoint for MinIO")
	flags.String("aws-region", "us-east-1", "AWS region")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvPrefix("SWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind flags")
	}

	ranges, err := pipeline.VariantTable(v.GetString("variant"))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid range variant")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store storage.ArtifactStore
	wingSrc, raySrc := v.GetString("wing"), v.GetString("ray")
	if storage.IsS3URI(wingSrc) || storage.IsS3URI(raySrc) {
		store, err = storage.NewS3Service(storage.S3Config{
			Endpoint:  v.GetString("s3-endpoint"),
			Region:    v.GetString("aws-region"),
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create artifact store")
		}
	}

	var registry estimator.Registry
	if err := registry.Load(ctx, estimator.NewLoader(store, &http.Client{Timeout: 30 * time.Second}), wingSrc, raySrc); err != nil {
		log.Fatal().Err(err).Msg("Failed to load estimator artifacts")
	}

	wing, ray, err := registry.Pair()
	if err != nil {
		log.Fatal().Err(err).Msg("Estimators unavailable")
	}
	svc := pipeline.NewPredictionService(wing, ray, pipeline.Options{Ranges: ranges})

	grid := sweep.NewGrid(ranges, v.GetFloat64("freq-step"), v.GetFloat64("s11-step"), v.GetFloat64("bw-step"))
	points, err := grid.Points()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid grid")
	}
	log.Info().Int("points", len(points)).Msg("Starting sweep")

	start := time.Now()
	report, err := sweep.Run(ctx, svc, points, v.GetInt("workers"))
	if err != nil {
		log.Fatal().Err(err).Msg("Sweep interrupted")
	}

	out := v.GetString("out")
	if out == "-" {
		err = sweep.WriteXLSX(os.Stdout, v.GetString("variant"), report)
	} else {
		err = sweep.SaveToXLSX(out, v.GetString("variant"), report)
	}
	if err != nil {
		log.Fatal().Err(err).Str("file", out).Msg("Failed to write XLSX")
	}
	if err := sweep.SaveToTSV(v.GetString("tsv"), report); err != nil {
		log.Fatal().Err(err).Msg("Failed to write TSV")
	}

	log.Info().
		Int("ok", len(report.Rows)).
		Int("ng", len(report.Failures)).
		Dur("elapsed", time.Since(start)).
		Str("file", out).
		Msg("Sweep complete")
}
