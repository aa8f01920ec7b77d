package source

import (
	"io"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Progress receives the download progress as a percentage between 0 and 100.
type Progress interface {
	// Update reports the current progress.
	Update(percent int)
	// Finish is called once after the last Update, also when the download failed.
	Finish()
}

// NopProgress ignores all updates.
type NopProgress struct{}

func (NopProgress) Update(int) {}
func (NopProgress) Finish()    {}

// LogProgress writes every update as a DEBUG log entry.
type LogProgress struct {
	// Name identifies the download in the log.
	Name string
}

func (p LogProgress) Update(percent int) {
	log.Debug("Download progress", zap.String("name", p.Name), zap.Int("percent", percent))
}

func (p LogProgress) Finish() {
	log.Debug("Download finished", zap.String("name", p.Name))
}

// barProgress draws a terminal progress bar.
type barProgress struct {
	bar *progressbar.ProgressBar
}

// NewBarProgress returns a Progress drawing a 70 columns wide bar on w.
func NewBarProgress(w io.Writer, description string) Progress {
	return &barProgress{
		bar: progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(70),
			progressbar.OptionSetDescription(description),
			progressbar.OptionShowCount(),
		),
	}
}

func (p *barProgress) Update(percent int) {
	if err := p.bar.Set(percent); err != nil {
		log.Debug("Failed to draw the progress bar", zap.Error(err))
	}
}

func (p *barProgress) Finish() {
	if err := p.bar.Close(); err != nil {
		log.Debug("Failed to close the progress bar", zap.Error(err))
	}
}
