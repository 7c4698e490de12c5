package web

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/medstock/handler"
	"github.com/dmitrymomot/medstock/internal/users"
	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/report"
)

type pdfResponse struct {
	filename string
	body     []byte
}

func (p pdfResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, p.filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(p.body)))
	_, err := w.Write(p.body)
	return err
}

func (s *Server) usersReport(ctx handler.Context, _ struct{}) handler.Response {
	list, err := s.users.List(ctx)
	if err != nil {
		return handler.Error(err)
	}

	var buf bytes.Buffer
	if err := report.RenderTable(&buf, usersTableReport(list, time.Now()), report.Options{Orientation: "L"}); err != nil {
		return handler.Error(err)
	}
	return pdfResponse{filename: "users.pdf", body: buf.Bytes()}
}

func usersTableReport(list []users.User, now time.Time) report.Table {
	t := report.Table{
		Title: "Users",
		Columns: []report.Column{
			{Header: "Name", Width: 3},
			{Header: "Email", Width: 3},
			{Header: "Phone", Width: 2},
			{Header: "Role", Width: 2},
			{Header: "Location", Width: 2},
			{Header: "Status", Width: 1},
		},
		Generated: now,
	}
	for _, u := range list {
		t.Rows = append(t.Rows, []string{u.Name, u.Email, u.Phone, roleLabel(u.Role), u.Location(), string(u.Status)})
	}
	return t
}

// rolesReport renders the permission matrix as a grid image, one row per
// role and one column per capability.
func (s *Server) rolesReport(_ handler.Context, _ struct{}) handler.Response {
	var buf bytes.Buffer
	if err := report.RenderPDF(&buf, permissionGrid(s.catalog), report.Options{Title: "Permission matrix", Orientation: "L"}); err != nil {
		return handler.Error(err)
	}
	return pdfResponse{filename: "roles.pdf", body: buf.Bytes()}
}

const (
	gridCell = 24
	gridGap  = 2
	areaGap  = 8
)

var (
	gridGranted = color.RGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff}
	gridDenied  = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
)

func permissionGrid(catalog *rbac.Catalog) image.Image {
	roles := catalog.List()
	areas := rbac.Areas()

	width := 0
	for _, a := range areas {
		width += len(rbac.CapabilitiesOf(a))*(gridCell+gridGap) + areaGap
	}
	height := len(roles) * (gridCell + gridGap)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	for row, cfg := range roles {
		y := row * (gridCell + gridGap)
		x := 0
		for _, a := range areas {
			for _, c := range rbac.CapabilitiesOf(a) {
				fill := gridDenied
				if cfg.Permissions.Allowed(a, c) {
					fill = gridGranted
				}
				draw.Draw(img, image.Rect(x, y, x+gridCell, y+gridCell), image.NewUniform(fill), image.Point{}, draw.Src)
				x += gridCell + gridGap
			}
			x += areaGap
		}
	}
	return img
}
