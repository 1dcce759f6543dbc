package encoding

import "runtime"

// Candidate is a video encoder the engine may record with, together with the
// invocation fragments it needs.
type Candidate struct {
	ID       string // Stable identifier, e.g. "vaapi", "software"
	Label    string
	Encoder  string // Value passed to the engine's video codec option
	Hardware bool

	// QualityArgs are the codec-specific quality/preset options.
	QualityArgs []string
	// InputArgs are injected before the inputs (e.g. accelerator device).
	InputArgs []string
	// Filter is an extra filter fragment required by the encoder, appended
	// after the pixel-format normalization.
	Filter string
}

// SoftwareBaseline is the encoder used when hardware preference is disabled
// or every accelerator probe fails.
func SoftwareBaseline() Candidate {
	return Candidate{
		ID:          "software",
		Label:       "Software x264",
		Encoder:     "libx264",
		QualityArgs: []string{"-crf", "23", "-preset", "veryfast"},
	}
}

// LowCompressionFallback trades file size for a much cheaper encode, for
// hosts whose CPU cannot keep up with x264 in real time.
func LowCompressionFallback() Candidate {
	return Candidate{
		ID:          "low-compression",
		Label:       "MPEG-4 Part 2 (low compression)",
		Encoder:     "mpeg4",
		QualityArgs: []string{"-q:v", "5"},
	}
}

// hardwareCandidates returns the accelerators worth probing on this machine
// class, in preference order.
func hardwareCandidates() []Candidate {
	switch runtime.GOOS {
	case "darwin":
		return []Candidate{
			{
				ID:          "videotoolbox",
				Label:       "VideoToolbox H.264",
				Encoder:     "h264_videotoolbox",
				Hardware:    true,
				QualityArgs: []string{"-b:v", "6M"},
			},
		}
	case "windows":
		return []Candidate{
			{
				ID:          "nvenc",
				Label:       "NVIDIA NVENC H.264",
				Encoder:     "h264_nvenc",
				Hardware:    true,
				QualityArgs: []string{"-preset", "p4", "-cq", "23"},
			},
			{
				ID:          "qsv",
				Label:       "Intel Quick Sync H.264",
				Encoder:     "h264_qsv",
				Hardware:    true,
				QualityArgs: []string{"-global_quality", "23", "-preset", "medium"},
			},
			{
				ID:          "amf",
				Label:       "AMD AMF H.264",
				Encoder:     "h264_amf",
				Hardware:    true,
				QualityArgs: []string{"-quality", "balanced", "-qp_i", "22", "-qp_p", "24"},
			},
		}
	default:
		return []Candidate{
			{
				ID:          "vaapi",
				Label:       "VAAPI H.264",
				Encoder:     "h264_vaapi",
				Hardware:    true,
				QualityArgs: []string{"-qp", "23"},
				InputArgs:   []string{"-vaapi_device", "/dev/dri/renderD128"},
				Filter:      "format=nv12,hwupload",
			},
			{
				ID:          "nvenc",
				Label:       "NVIDIA NVENC H.264",
				Encoder:     "h264_nvenc",
				Hardware:    true,
				QualityArgs: []string{"-preset", "p4", "-cq", "23"},
			},
			{
				ID:          "qsv",
				Label:       "Intel Quick Sync H.264",
				Encoder:     "h264_qsv",
				Hardware:    true,
				QualityArgs: []string{"-global_quality", "23", "-preset", "medium"},
			},
		}
	}
}
