package pipeline

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/terravox/scanextract/internal/cloud"
	"github.com/terravox/scanextract/internal/filter"
	"github.com/terravox/scanextract/internal/geom"
)

// Process runs the fixed per-scan sequence: resolve the pose transform, crop
// in the local frame, thin the cropped set, map survivors to world
// coordinates, and assemble the metadata row. No step reorders points except
// by removal, so survivors keep their capture order.
//
// Failure (an invalid pose) aborts this scan only; it carries no state that
// could affect sibling scans.
func Process(scan *ScanRecord, params filter.Params) (*OutputRecord, error) {
	transform, err := geom.Resolve(scan.Pose)
	if err != nil {
		return nil, err
	}

	cropped := filter.Crop(scan.Points, params.Radius)
	thinned := filter.Thin(cropped, params.Spacing)

	world := make([]cloud.Point, len(thinned))
	for i, p := range thinned {
		w := transform.ToWorld(mgl64.Vec3{p.X, p.Y, p.Z})
		world[i] = p
		world[i].X, world[i].Y, world[i].Z = w.X(), w.Y(), w.Z()
	}

	// Quantization is derived from the output bounding box so the whole
	// cropped extent stays representable at the target precision.
	quant := cloud.DeriveQuantization(cloud.BoundsOf(world), cloud.DefaultQuantizationScale)

	pose := scan.Pose
	return &OutputRecord{
		Points:       world,
		Schema:       scan.Schema,
		Quantization: quant,
		RawCount:     len(scan.Points),
		CroppedCount: len(cropped),
		Meta: MetadataRow{
			OriginName:   scan.OriginName,
			ScanName:     scan.Name,
			SourcePath:   scan.SourcePath,
			Created:      scan.Created,
			TranslationX: pose.Translation.X(),
			TranslationY: pose.Translation.Y(),
			TranslationZ: pose.Translation.Z(),
			RotationX:    pose.Rotation.V.X(),
			RotationY:    pose.Rotation.V.Y(),
			RotationZ:    pose.Rotation.V.Z(),
			RotationW:    pose.Rotation.W,
			Scale:        pose.Scale,
			OffsetX:      pose.Offset.X(),
			OffsetY:      pose.Offset.Y(),
			OffsetZ:      pose.Offset.Z(),
		},
	}, nil
}
