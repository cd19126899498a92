package transport

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var pdfFilters = []wailsruntime.FileFilter{
	{
		DisplayName: "PDF Files (*.pdf)",
		Pattern:     "*.pdf",
	},
}

type dialogsHandler struct {
	ctx context.Context
}

func NewDialogsHandler(ctx context.Context) DialogHandler {
	return &dialogsHandler{
		ctx: ctx,
	}
}

func (h *dialogsHandler) OpenFileDialog() ([]string, error) {
	return wailsruntime.OpenMultipleFilesDialog(h.ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select PDF files",
		Filters: pdfFilters,
	})
}

func (h *dialogsHandler) OpenDirectoryDialog() (string, error) {
	return wailsruntime.OpenDirectoryDialog(h.ctx, wailsruntime.OpenDialogOptions{
		Title: "Select download folder",
	})
}

func (h *dialogsHandler) ShowSaveDialog(filename string) (string, error) {
	return wailsruntime.SaveFileDialog(h.ctx, wailsruntime.SaveDialogOptions{
		Title:           "Save PDF",
		DefaultFilename: filename,
		Filters:         pdfFilters,
	})
}

func (h *dialogsHandler) OpenFile(filePath string) error {
	wailsruntime.BrowserOpenURL(h.ctx, "file://"+filePath)
	return nil
}
