package engine

import (
	"fmt"

	"github.com/stepleton/hpgl2tek/internal/archive"
	"github.com/stepleton/hpgl2tek/internal/render"
	"github.com/stepleton/hpgl2tek/internal/system"
	"github.com/stepleton/hpgl2tek/internal/video"
)

// VideoSink streams frames into a long-lived encoder process. When every
// frame of the run arrived it holds the optional QR end card for a few
// seconds before closing the stream.
type VideoSink struct {
	Encoder       video.Encoder
	Total         int
	EndCardURL    string
	EndCardFrames int
	Width, Height int

	delivered int
	finalized bool
}

func (s *VideoSink) Consume(f *Frame) error {
	err := s.Encoder.Append(f.Image)
	system.PutImage(f.Image)
	if err != nil {
		return fmt.Errorf("encoding frame %d: %w", f.Index, err)
	}
	s.delivered++
	return nil
}

func (s *VideoSink) Finalize() error {
	if s.finalized {
		return nil
	}
	s.finalized = true

	// No end card on an aborted run; the encoder still gets closed so a
	// partial file is playable for inspection.
	if s.EndCardURL != "" && s.delivered == s.Total {
		card, err := render.EndCard(s.EndCardURL, s.Width, s.Height)
		if err != nil {
			fmt.Printf("[!] End card skipped: %v\n", err)
		} else {
			for i := 0; i < s.EndCardFrames; i++ {
				if err := s.Encoder.Append(card); err != nil {
					return fmt.Errorf("encoding end card: %w", err)
				}
			}
		}
	}

	return s.Encoder.Finalize()
}

// ArchiveSink collects emitted frames and writes the capacity-bounded ZIP
// chain in one pass at the end. Nothing touches the disk until every frame
// of the run has arrived, so an aborted run leaves no partial archives.
type ArchiveSink struct {
	Prefix   string
	BaseName string
	Capacity int
	Total    int

	// Written holds the archive paths after a successful Finalize.
	Written []string

	files []archive.File
}

func (s *ArchiveSink) Consume(f *Frame) error {
	s.files = append(s.files, archive.File{
		Name: fmt.Sprintf("%s%d", s.BaseName, f.Index+1),
		Data: f.Data,
	})
	return nil
}

func (s *ArchiveSink) Finalize() error {
	if len(s.files) != s.Total {
		return fmt.Errorf("run incomplete: %d of %d frames delivered, no archives written",
			len(s.files), s.Total)
	}
	paths, err := archive.WriteArchives(s.Prefix, s.files, s.Capacity)
	if err != nil {
		return err
	}
	s.Written = paths
	return nil
}
