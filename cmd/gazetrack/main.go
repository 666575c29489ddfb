// Gaze tracker - webcam pupil tracking with affine gaze calibration.
//
// Opens the camera, runs the per-frame pipeline, serves the dashboard,
// and runs the five-target calibration when requested.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gocv.io/x/gocv"

	"github.com/jishaemilin2005-cyber/Gaze-mapping/internal/config"
	"github.com/jishaemilin2005-cyber/Gaze-mapping/internal/log"
	"github.com/jishaemilin2005-cyber/Gaze-mapping/pkg/camera"
	"github.com/jishaemilin2005-cyber/Gaze-mapping/pkg/debug"
	"github.com/jishaemilin2005-cyber/Gaze-mapping/pkg/gaze"
	"github.com/jishaemilin2005-cyber/Gaze-mapping/pkg/web"
)

var (
	device        = flag.String("device", "", "capture device index or path (default: CAMERA_DEVICE env or 0)")
	camPreset     = flag.String("camera-preset", "", "camera preset: default, virtualcam, lowres")
	profile       = flag.String("profile", "default", "tracking profile: default, lowlight, fast")
	port          = flag.String("port", "", "dashboard port (default: PORT env or 8000)")
	screenW       = flag.Int("screen-width", 0, "display width in pixels (default: SCREEN_WIDTH env or 1920)")
	screenH       = flag.Int("screen-height", 0, "display height in pixels (default: SCREEN_HEIGHT env or 1080)")
	targetMargin  = flag.Float64("target-margin", 200, "calibration target inset from screen edges (px)")
	calibrateNow  = flag.Bool("calibrate", false, "run calibration immediately at startup")
	frameEvery    = flag.Int("frame-every", 3, "stream every Nth annotated frame to the dashboard")
	noFlip        = flag.Bool("no-flip", false, "disable horizontal mirror flip")
	debugMode     = flag.Bool("debug", false, "enable debug logging")
	debugPipeline = flag.Bool("debug-pipeline", false, "enable very verbose per-frame pipeline logs")
)

func main() {
	flag.Parse()

	level := config.LogLevel()
	if *debugMode {
		level = "debug"
	}
	log.Init(level)
	debug.Enabled = *debugMode
	debug.Pipeline = *debugPipeline

	fmt.Println("👁  Gaze Tracker")
	fmt.Println("================")

	// Camera configuration: preset first, then env, then flags on top.
	camCfg := camera.DefaultConfig()
	if *camPreset != "" {
		preset := camera.GetPreset(*camPreset)
		if preset == nil {
			fmt.Fprintf(os.Stderr, "unknown camera preset: %s\n", *camPreset)
			os.Exit(1)
		}
		camCfg = *preset
	}
	if os.Getenv("CAMERA_DEVICE") != "" {
		camCfg.Device = config.CameraDevice()
	}
	if *device != "" {
		camCfg.Device = *device
	}
	if *noFlip {
		camCfg.HorizontalFlip = false
	}

	// Tracking profile.
	var gazeCfg gaze.Config
	switch *profile {
	case "default":
		gazeCfg = gaze.DefaultConfig()
	case "lowlight":
		gazeCfg = gaze.LowLightConfig()
	case "fast":
		gazeCfg = gaze.FastConfig()
	default:
		fmt.Fprintf(os.Stderr, "unknown tracking profile: %s\n", *profile)
		os.Exit(1)
	}
	if errs := gazeCfg.Validate(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "invalid tracking config: %v\n", errs)
		os.Exit(1)
	}

	sw, sh := config.ScreenSize()
	if *screenW > 0 {
		sw = *screenW
	}
	if *screenH > 0 {
		sh = *screenH
	}

	cam, err := camera.Open(camCfg)
	if err != nil {
		// DeviceUnavailable is fatal to the session by contract.
		log.Error("cannot open camera", "error", err)
		os.Exit(1)
	}
	defer cam.Close()
	fmt.Printf("📷 Camera: %s\n", cam.Device())

	tracker := gaze.NewTracker(gazeCfg)
	defer tracker.Close()

	targets := gaze.DefaultTargets(float64(sw), float64(sh), *targetMargin)

	dashPort := config.Port()
	if *port != "" {
		dashPort = *port
	}

	// Calibration runs on the frame loop, never concurrently with it;
	// the dashboard only files a request.
	calibReq := make(chan struct{}, 1)

	server := web.NewServer(dashPort)
	server.Targets = targets
	server.Cameras = camera.NewManager(camCfg)
	server.OnCalibrate = func() error {
		select {
		case calibReq <- struct{}{}:
			return nil
		default:
			return errors.New("calibration already pending")
		}
	}
	server.OnReset = tracker.Reset
	server.UpdateState(func(st *web.TrackerState) { st.CameraConnected = true })
	server.StartAsync()
	fmt.Printf("🌐 Dashboard: http://localhost:%s\n", dashPort)

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 Shutting down")
		cancel()
	}()

	if *calibrateNow {
		calibReq <- struct{}{}
	}

	calibrator := gaze.NewCalibrator(gazeCfg, targets, server)
	run(ctx, cam, tracker, calibrator, server, calibReq, *frameEvery)

	server.Shutdown()
	fmt.Printf("✅ Session complete. Detection rate: %.1f%%\n", tracker.DetectionRate()*100)
}

// run is the per-frame loop. Stop and recalibrate requests are
// observed at the top of the loop; nothing is interruptible mid-frame.
func run(ctx context.Context, cam *camera.Webcam, tracker *gaze.Tracker,
	calibrator *gaze.Calibrator, server *web.Server,
	calibReq <-chan struct{}, frameEvery int) {

	frame := gocv.NewMat()
	defer frame.Close()

	frameCount := 0
	lastReport := time.Now()

	for {
		select {
		case <-ctx.Done():
			return

		case <-calibReq:
			result, err := calibrator.Run(ctx, cam, tracker)
			if err != nil {
				var insufficient *gaze.InsufficientSamplesError
				switch {
				case errors.As(err, &insufficient):
					log.Warn("calibration target failed, retry it",
						"target", insufficient.Target,
						"got", insufficient.Got,
						"want", insufficient.Want)
					server.AddLog("error", "calibration: "+err.Error())
				case errors.Is(err, gaze.ErrDegenerate):
					log.Warn("calibration degenerate, re-run the session")
					server.AddLog("error", "calibration: "+err.Error())
				case errors.Is(err, context.Canceled):
					return
				default:
					log.Error("calibration aborted", "error", err)
					return
				}
				continue
			}
			server.SetCalibration(result)

		default:
			ts, err := cam.Next(&frame)
			if err != nil {
				log.Error("frame source failed", "error", err)
				return
			}

			res := tracker.Step(frame, ts)
			server.UpdateTracking(res, tracker.DetectionRate())

			frameCount++
			if frameEvery > 0 && frameCount%frameEvery == 0 && server.FrameSubscribers() > 0 {
				streamDebugFrame(server, frame, res)
			}

			if time.Since(lastReport) >= 15*time.Second {
				log.Info("tracking",
					"frames", tracker.FramesProcessed(),
					"detection_rate", fmt.Sprintf("%.2f", tracker.DetectionRate()),
					"calibrated", tracker.Calibrated())
				lastReport = time.Now()
			}
		}
	}
}

// streamDebugFrame annotates a copy of the frame with the detection
// overlay and broadcasts it to dashboard subscribers.
func streamDebugFrame(server *web.Server, frame gocv.Mat, res gaze.Result) {
	vis := frame.Clone()
	defer vis.Close()

	green := color.RGBA{G: 255}
	if res.ROI != nil {
		gocv.Rectangle(&vis, *res.ROI, color.RGBA{B: 255}, 1)
	}
	if res.Pupil != nil {
		gocv.Circle(&vis, image.Pt(int(res.Pupil.X), int(res.Pupil.Y)), 6, green, -1)
		gocv.PutText(&vis, fmt.Sprintf("pupil (%.0f, %.0f) conf %.2f", res.Pupil.X, res.Pupil.Y, res.Confidence),
			image.Pt(10, 30), gocv.FontHersheySimplex, 0.6, green, 2)
	}
	if res.Gaze != nil {
		gocv.PutText(&vis, fmt.Sprintf("gaze (%.0f, %.0f)", res.Gaze.X, res.Gaze.Y),
			image.Pt(10, 60), gocv.FontHersheySimplex, 0.6, color.RGBA{R: 255}, 2)
	}

	jpeg, err := camera.EncodeJPEG(vis, server.Cameras.GetConfig().Quality)
	if err != nil {
		debug.Log("debug frame encode failed: %v\n", err)
		return
	}
	server.SendFrame(jpeg)
}
