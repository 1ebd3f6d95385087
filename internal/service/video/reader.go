// Package video decodes a match recording into grayscale frames.
package video

import (
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"fieldtrack/internal/service/egomotion"
)

// Reader yields grayscale frames from a video file.
type Reader struct {
	capture *gocv.VideoCapture
	path    string
	read    int
}

// Open opens a video file for sequential reading.
func Open(path string) (*Reader, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("open video %s: capture not opened", path)
	}
	return &Reader{capture: capture, path: path}, nil
}

// Next returns the next frame converted to grayscale, or io.EOF after the last frame.
func (r *Reader) Next() (egomotion.Frame, error) {
	img := gocv.NewMat()
	defer img.Close()

	if ok := r.capture.Read(&img); !ok || img.Empty() {
		return nil, io.EOF
	}

	gray := gocv.NewMat()
	if err := gocv.CvtColor(img, &gray, gocv.ColorBGRToGray); err != nil {
		gray.Close()
		return nil, fmt.Errorf("convert frame %d to grayscale: %w", r.read, err)
	}
	r.read++
	return &egomotion.MatFrame{Mat: gray}, nil
}

// FPS reports the container's nominal frame rate.
func (r *Reader) FPS() float64 {
	return r.capture.Get(gocv.VideoCaptureFPS)
}

// FrameCount reports the container's frame count, which may be an estimate.
func (r *Reader) FrameCount() int {
	return int(r.capture.Get(gocv.VideoCaptureFrameCount))
}

func (r *Reader) Close() error {
	return r.capture.Close()
}
