package config

import (
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

//Load reads the optional yaml config file from the working directory and
//registers the documented defaults for every tunable. A missing config file
//is fine; a malformed one is an error.
func Load() error {
	setDefaults()

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return nil
		}
		return errors.Wrap(err, "config: could not read config file")
	}

	return nil
}

func setDefaults() {
	//video settings
	viper.SetDefault("video.source", "0")
	viper.SetDefault("video.width", 640)
	viper.SetDefault("video.height", 480)
	viper.SetDefault("video.fps", 30)

	//background modeling settings
	viper.SetDefault("background.num_frames", 200)
	viper.SetDefault("background.method", "median")

	//motion detection settings
	viper.SetDefault("detection.threshold", 30)
	viper.SetDefault("detection.blur_size", 5)
	viper.SetDefault("detection.min_area", 500)
	viper.SetDefault("detection.confidence", 0.8)

	//event log settings
	viper.SetDefault("events.recent_window", "1h")
	viper.SetDefault("events.alert_sound", true)
	viper.SetDefault("events.csv_file", "")

	//output settings
	viper.SetDefault("output.show_preview", true)
	viper.SetDefault("output.save_video", false)
	viper.SetDefault("output.video_path", "output.avi")

	//http settings
	viper.SetDefault("http.port", "8080")

	//logging settings
	viper.SetDefault("log.file", "")
	viper.SetDefault("log.max_size_mb", 10)
	viper.SetDefault("log.max_backups", 3)
}

//SetupLogging routes the standard logger to stderr plus a size-rotated log
//file when 'log.file' is configured
func SetupLogging() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	path := viper.GetString("log.file")
	if path == "" {
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    viper.GetInt("log.max_size_mb"),
		MaxBackups: viper.GetInt("log.max_backups"),
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotated))
}
