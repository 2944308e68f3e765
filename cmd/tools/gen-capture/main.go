// Command gen-capture generates synthetic .scap capture files for testing
// the extraction pipeline without real scanner data.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/terravox/scanextract/internal/capture"
	"github.com/terravox/scanextract/internal/cloud"
)

func main() {
	output := flag.String("o", "sample.scap", "output path")
	scans := flag.Int("scans", 3, "number of scans")
	points := flag.Int("points", 50000, "points per scan")
	extent := flag.Float64("extent", 25.0, "max point distance from scan origin (meters)")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	env := capture.FileEnvelope{
		GUID:    uuid.NewString(),
		Created: time.Now().UTC(),
	}

	for i := 0; i < *scans; i++ {
		angle := rng.Float64() * 2 * math.Pi
		scan := capture.ScanEnvelope{
			GUID: uuid.NewString(),
			Name: fmt.Sprintf("Scan%03d", i+1),
			Pose: capture.PoseEnvelope{
				Translation: [3]float64{rng.Float64() * 40, rng.Float64() * 40, rng.Float64() * 3},
				// Rotation about Z by a random angle, as a unit quaternion.
				Rotation: [4]float64{0, 0, math.Sin(angle / 2), math.Cos(angle / 2)},
				Scale:    1,
			},
			HasIntensity: true,
		}
		for p := 0; p < *points; p++ {
			r := *extent * math.Cbrt(rng.Float64())
			theta := rng.Float64() * 2 * math.Pi
			phi := math.Acos(2*rng.Float64() - 1)
			scan.Points = append(scan.Points, cloud.Point{
				X:         r * math.Sin(phi) * math.Cos(theta),
				Y:         r * math.Sin(phi) * math.Sin(theta),
				Z:         r * math.Cos(phi),
				Intensity: uint16(rng.Intn(65536)),
			})
		}
		env.Scans = append(env.Scans, scan)
	}

	if err := capture.Write(*output, env); err != nil {
		log.Fatalf("write capture: %v", err)
	}
	log.Printf("✓ Created: %s (%d scans, %d points each)", *output, *scans, *points)
}
