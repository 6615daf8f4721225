package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	listen := flag.String("listen", "", "HTTP listen address (default "+config.DefaultListen+")")
	dbPath := flag.String("db", "", "SQLite database path (default ~/.mudra/"+config.DefaultDBFile+")")
	cameraID := flag.Int("camera", config.DefaultCameraID, "camera device ID")
	withTray := flag.Bool("tray", false, "show the system tray menu")
	flag.Parse()

	fmt.Println("Mudra - Hand Tracking")

	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	// Flags given on the command line win over the file
	applyFlags := func() {
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "listen":
				cfg.Listen = listen
			case "db":
				cfg.DBPath = dbPath
			case "camera":
				cfg.CameraID = cameraID
			}
		})
	}
	applyFlags()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize the store
	path := cfg.GetDBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(path)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Settings saved from the UI override the file
	if saved, err := st.Settings().All(); err != nil {
		log.Printf("Failed to read saved settings: %v", err)
	} else if err := cfg.ApplySettings(saved); err != nil {
		log.Printf("Ignoring saved settings: %v", err)
	}
	applyFlags()

	application := app.New(app.Config{
		Store:    st,
		CameraID: cfg.GetCameraID(),
		FPS:      cfg.GetFPS(),
		Mirror:   cfg.GetMirror(),
		Pipeline: cfg.Pipeline(),
		Detector: cfg.Detector(),
	})
	application.SetEnabled(true)
	if err := application.Start(); err != nil {
		log.Printf("Camera unavailable (%v), serving recordings only", err)
	}

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Feed:      application,
		Recorder:  application,
		Settings:  cfg,
		OnSettings: func(c config.Config) error {
			return application.Apply(appSettings(c))
		},
	})

	addr := cfg.GetListen()
	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *withTray {
		runTray(ctx, application, settingsURL(addr))
	} else {
		<-ctx.Done()
	}

	application.Stop()
}

// runTray shows the tray menu on the calling goroutine, which must be the
// main one, until Quit is clicked or ctx is cancelled.
func runTray(ctx context.Context, application *app.App, url string) {
	t := tray.New()
	t.OnToggle(application.SetEnabled)
	t.OnRecord(func(recording bool) error {
		if recording {
			_, err := application.StartRecording("")
			return err
		}
		rec, err := application.StopRecording()
		if err == nil {
			log.Printf("Saved recording %s (%d frames)", rec.ID, rec.FrameCount)
		}
		return err
	})
	t.OnSettings(func() {
		if err := openBrowser(url); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})

	updates, cancel := application.Subscribe()
	defer cancel()
	go t.Watch(updates)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
}

// appSettings maps the runtime-adjustable config onto the app.
func appSettings(c config.Config) app.Settings {
	return app.Settings{
		CameraID: c.GetCameraID(),
		FPS:      c.GetFPS(),
		Mirror:   c.GetMirror(),
		Pipeline: c.Pipeline(),
		Detector: c.Detector(),
	}
}

// settingsURL turns a listen address into a local browser URL.
func settingsURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
