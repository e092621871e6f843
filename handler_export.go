package main

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cmms/internal/audit"
	"cmms/internal/response"
	"cmms/internal/views"
)

// handleExport streams a collection as CSV or XLSX. Exports read the state
// store's collections, so they always match what the API serves.
func (app *App) handleExport(w http.ResponseWriter, r *http.Request, entity string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	var (
		sheet   string
		headers []string
		data    [][]string
	)
	switch entity {
	case "checklists":
		sheet = "Checklists"
		headers = []string{"ID", "Title", "Department", "Frequency", "Status", "Progress", "Assigned To", "Created At", "Completed At"}
		for _, c := range app.State.Checklists() {
			assignee := ""
			if c.AssignedTo != nil {
				assignee = c.AssignedTo.Name
			}
			data = append(data, []string{
				c.ID, c.Title, c.Department, c.Frequency, c.Status,
				strconv.Itoa(views.Progress(c)) + "%", assignee,
				exportTime(c.CreatedAt), exportTimePtr(c.CompletedAt),
			})
		}
	case "requests":
		sheet = "Requests"
		headers = []string{"ID", "Title", "Department", "Priority", "Status", "Requested By", "Assigned To", "Created At", "Updated At"}
		for _, req := range app.State.Requests() {
			assignee := ""
			if req.AssignedTo != nil {
				assignee = req.AssignedTo.Name
			}
			data = append(data, []string{
				req.ID, req.Title, req.Department, req.Priority, req.Status,
				req.RequestedByName, assignee,
				exportTime(req.CreatedAt), exportTimePtr(req.UpdatedAt),
			})
		}
	case "users":
		if !sess.User.HasPermission("view_admin_panel") {
			response.Err(w, "Not allowed", 403)
			return
		}
		sheet = "Users"
		headers = []string{"ID", "Name", "Initials", "Role", "Department", "Permissions", "Last Login"}
		for _, u := range app.State.Users() {
			data = append(data, []string{
				u.ID, u.Name, u.Initials, u.Role, u.Department,
				strings.Join(u.Permissions, ", "), exportTimePtr(u.LastLogin),
			})
		}
	default:
		response.Err(w, "Unknown export entity", 404)
		return
	}

	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionExport, entity, "", fmt.Sprintf("Exported %d %s rows as %s", len(data), entity, format))

	if format == "xlsx" {
		exportExcel(w, sheet, headers, data)
	} else {
		exportCSV(w, entity+".csv", headers, data)
	}
}

func exportTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func exportTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return exportTime(*t)
}

func exportCSV(w http.ResponseWriter, filename string, headers []string, data [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		http.Error(w, "Failed to write CSV headers", 500)
		return
	}
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			http.Error(w, "Failed to write CSV row", 500)
			return
		}
	}
}

func exportExcel(w http.ResponseWriter, sheetName string, headers []string, data [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		http.Error(w, "Failed to create Excel sheet", 500)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		http.Error(w, "Failed to create header style", 500)
		return
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", string(rune('A'+colIdx)), rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 15)
	}

	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", strings.ToLower(sheetName)))

	if err := f.Write(w); err != nil {
		http.Error(w, "Failed to write Excel file", 500)
		return
	}
}
