// Camera check - verify capture and measure frame rate
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gocv.io/x/gocv"

	"github.com/jishaemilin2005-cyber/Gaze-mapping/internal/config"
	"github.com/jishaemilin2005-cyber/Gaze-mapping/pkg/camera"
)

var (
	device   = flag.String("device", "", "capture device index or path (default: CAMERA_DEVICE env or 0)")
	preset   = flag.String("preset", "", "camera preset: default, virtualcam, lowres")
	duration = flag.Duration("duration", 0, "stop after this long (0 = run until Ctrl+C)")
	saveTo   = flag.String("save", "check_frame.jpg", "path for the first captured frame ('' to skip)")
)

func main() {
	flag.Parse()

	fmt.Println("📷 Camera Check")
	fmt.Println("===============")

	cfg := camera.DefaultConfig()
	if *preset != "" {
		p := camera.GetPreset(*preset)
		if p == nil {
			fmt.Printf("❌ Unknown preset: %s\n", *preset)
			os.Exit(1)
		}
		cfg = *p
	}
	if os.Getenv("CAMERA_DEVICE") != "" {
		cfg.Device = config.CameraDevice()
	}
	if *device != "" {
		cfg.Device = *device
	}

	cam, err := camera.Open(cfg)
	if err != nil {
		fmt.Printf("❌ Cannot open camera: %v\n", err)
		os.Exit(1)
	}
	defer cam.Close()
	fmt.Printf("Device: %s (%dx%d requested)\n\n", cam.Device(), cfg.Width, cfg.Height)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	frame := gocv.NewMat()
	defer frame.Close()

	frameCount := 0
	startTime := time.Now()
	lastReport := time.Now()

	report := func() {
		elapsed := time.Since(startTime).Seconds()
		fmt.Printf("\n\n📊 Final: %d frames in %.1fs = %.2f fps\n",
			frameCount, elapsed, float64(frameCount)/elapsed)
	}

	go func() {
		<-sigChan
		report()
		os.Exit(0)
	}()

	fmt.Println("🎬 Capturing (Ctrl+C to stop)...")

	for {
		if *duration > 0 && time.Since(startTime) >= *duration {
			report()
			return
		}

		if _, err := cam.Next(&frame); err != nil {
			fmt.Printf("\n❌ Frame read failed: %v\n", err)
			os.Exit(1)
		}
		frameCount++

		if frameCount == 1 {
			fmt.Printf("First frame: %dx%d\n", frame.Cols(), frame.Rows())
			if *saveTo != "" {
				jpeg, err := camera.EncodeJPEG(frame, cfg.Quality)
				if err == nil {
					os.WriteFile(*saveTo, jpeg, 0644)
					fmt.Printf("💾 Saved: %s (%d bytes)\n", *saveTo, len(jpeg))
				}
			}
		}

		if time.Since(lastReport) >= time.Second {
			elapsed := time.Since(startTime).Seconds()
			fmt.Printf("\r📷 Frames: %d | FPS: %.2f | Size: %dx%d    ",
				frameCount, float64(frameCount)/elapsed, frame.Cols(), frame.Rows())
			lastReport = time.Now()
		}
	}
}
