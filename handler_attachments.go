package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cmms/internal/response"
)

// handleUploadAttachment stores an uploaded image under the uploads
// directory and returns the URL to reference it from a request or message.
func (app *App) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB max
		response.Err(w, "Failed to parse form", 400)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Err(w, "File required", 400)
		return
	}
	defer file.Close()

	ts := time.Now().UnixMilli()
	safeName := strings.ReplaceAll(header.Filename, "/", "_")
	safeName = strings.ReplaceAll(safeName, "\\", "_")
	filename := fmt.Sprintf("%d-%s", ts, safeName)

	outPath := filepath.Join(app.UploadsDir, filename)
	out, err := os.Create(outPath)
	if err != nil {
		response.Err(w, "Failed to save file", 500)
		return
	}
	defer out.Close()
	written, err := io.Copy(out, file)
	if err != nil {
		response.Err(w, "Failed to write file", 500)
		return
	}

	w.WriteHeader(201)
	response.JSON(w, map[string]any{
		"url":         "/files/" + filename,
		"filename":    filename,
		"size_bytes":  written,
		"mime_type":   header.Header.Get("Content-Type"),
		"uploaded_by": sess.User.Name,
	})
}

func (app *App) handleServeFile(w http.ResponseWriter, r *http.Request, filename string) {
	filename = filepath.Base(filename)
	path := filepath.Join(app.UploadsDir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Disposition", "inline; filename=\""+filename+"\"")
	http.ServeFile(w, r, path)
}
