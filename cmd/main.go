package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/api"
	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/background"
	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/config"
	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/events"
	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/pipeline"
	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/videoio"
	"github.com/spf13/viper"
	"gocv.io/x/gocv"
)

const usage = `Background Extraction and Object Detection

Usage:
  detector background [--source S] [--frames N] [--method M] [--out PATH]
  detector detect     [--source S] [--frames N] [--method M] [--threshold T] [--min-area A]
  detector serve      [--source S] [--frames N] [--method M] [--threshold T] [--min-area A]
  detector info       --video PATH
  detector cameras
`

func main() {
	if err := config.Load(); err != nil {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Fatalf("Error: Could not read config file, got '%v'", err)
	}
	config.SetupLogging()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "background":
		err = runBackground(ctx, os.Args[2:])
	case "detect":
		err = runDetect(ctx, os.Args[2:], false)
	case "serve":
		err = runDetect(ctx, os.Args[2:], true)
	case "info":
		err = runInfo(os.Args[2:])
	case "cameras":
		err = runCameras()
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Error: Got '%v'", err)
	}
}

//sessionFlags binds the shared detection tunables to a subcommand FlagSet,
//defaulting every flag from configuration
func sessionFlags(fs *flag.FlagSet) *pipeline.Config {
	cfg := &pipeline.Config{}
	fs.StringVar(&cfg.Source, "source", viper.GetString("video.source"), "video source (camera index or file path)")
	fs.IntVar(&cfg.Width, "width", viper.GetInt("video.width"), "frame width")
	fs.IntVar(&cfg.Height, "height", viper.GetInt("video.height"), "frame height")
	fs.IntVar(&cfg.NumFrames, "frames", viper.GetInt("background.num_frames"), "number of frames for background estimation")
	fs.IntVar(&cfg.Threshold, "threshold", viper.GetInt("detection.threshold"), "motion detection threshold")
	fs.IntVar(&cfg.BlurSize, "blur", viper.GetInt("detection.blur_size"), "mask median blur size (odd)")
	fs.IntVar(&cfg.MinArea, "min-area", viper.GetInt("detection.min_area"), "minimum contour area")
	fs.BoolVar(&cfg.ShowPreview, "preview", viper.GetBool("output.show_preview"), "show preview windows")
	fs.BoolVar(&cfg.SaveVideo, "save", viper.GetBool("output.save_video"), "record annotated output video")
	fs.StringVar(&cfg.OutputPath, "output", viper.GetString("output.video_path"), "output video path")
	cfg.Confidence = viper.GetFloat64("detection.confidence")
	cfg.FPS = viper.GetFloat64("video.fps")
	return cfg
}

func parseMethodFlag(fs *flag.FlagSet) *string {
	return fs.String("method", viper.GetString("background.method"), "background method: median, mean or adaptiveMixture")
}

func runBackground(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("background", flag.ExitOnError)
	cfg := sessionFlags(fs)
	methodName := parseMethodFlag(fs)
	out := fs.String("out", "background.jpg", "where to write the background snapshot")
	fs.Parse(args)

	method, err := background.ParseMethod(*methodName)
	if err != nil {
		return err
	}
	cfg.Method = method

	session := pipeline.New(*cfg, events.NewRecorder())
	defer session.Close()

	if err := session.EstimateBackground(ctx); err != nil {
		return err
	}

	bg, err := session.Background()
	if err != nil {
		return err
	}
	defer bg.Close()

	if ok := gocv.IMWrite(*out, bg); !ok {
		return fmt.Errorf("could not write background snapshot to '%s'", *out)
	}
	log.Printf("runBackground: Wrote background snapshot to '%s'", *out)
	return nil
}

func runDetect(ctx context.Context, args []string, serve bool) error {
	name := "detect"
	if serve {
		name = "serve"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cfg := sessionFlags(fs)
	methodName := parseMethodFlag(fs)
	fs.Parse(args)

	method, err := background.ParseMethod(*methodName)
	if err != nil {
		return err
	}
	cfg.Method = method

	rec := events.NewRecorder()
	if viper.GetBool("events.alert_sound") {
		rec.OnEvent = events.ConsoleBell
	}

	session := pipeline.New(*cfg, rec)
	defer session.Close()

	if err := session.EstimateBackground(ctx); err != nil {
		return err
	}

	if serve {
		r := api.SetRouter(rec, session)
		go func() {
			if err := r.Run(":" + viper.GetString("http.port")); err != nil {
				log.Printf("runDetect: HTTP server stopped, got '%v'", err)
			}
		}()
	}

	if err := session.Run(ctx); err != nil {
		return err
	}

	if csvPath := viper.GetString("events.csv_file"); csvPath != "" {
		if err := rec.ExportCSV(csvPath, false); err != nil {
			log.Printf("runDetect: Could not export events, got '%v'", err)
		}
	}

	stats := rec.Statistics()
	log.Printf("runDetect: Session finished with %d motion events", stats.TotalEvents)
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	video := fs.String("video", "", "video file path")
	fs.Parse(args)

	if *video == "" {
		return fmt.Errorf("info: missing required --video flag")
	}

	info, err := videoio.Info(*video)
	if err != nil {
		return err
	}

	fmt.Println("Video Information:")
	fmt.Printf("  Path: %s\n", info.Path)
	fmt.Printf("  Resolution: %dx%d\n", info.Width, info.Height)
	fmt.Printf("  FPS: %.2f\n", info.FPS)
	fmt.Printf("  Frame Count: %d\n", info.FrameCount)
	fmt.Printf("  Duration: %.2f seconds\n", info.Duration)
	return nil
}

func runCameras() error {
	cameras := videoio.ListCameras(10)
	if len(cameras) == 0 {
		fmt.Println("No cameras found")
		return nil
	}

	fmt.Println("Available cameras:")
	for _, id := range cameras {
		fmt.Printf("  Camera %d\n", id)
	}
	return nil
}
