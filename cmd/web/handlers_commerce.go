package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/canchapp/canchapp/internal/commerce"
	"github.com/canchapp/canchapp/internal/media"
	"github.com/canchapp/canchapp/internal/service"
	"github.com/google/uuid"
)

func (a *app) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := a.shop.ListProducts(r.Context())
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) createProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if !decode(w, r, &in) {
		return
	}
	p, err := a.shop.CreateProduct(r.Context(), in)
	respond(w, r, http.StatusCreated, p, err)
}

func (a *app) updateProduct(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in service.ProductInput
	if !decode(w, r, &in) {
		return
	}
	p, err := a.shop.UpdateProduct(r.Context(), id, in)
	respond(w, r, http.StatusOK, p, err)
}

func (a *app) deleteProduct(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	respond(w, r, 0, nil, a.shop.DeleteProduct(r.Context(), id))
}

func (a *app) recordSale(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID uuid.UUID `json:"product_id"`
		Quantity  int       `json:"quantity"`
	}
	if !decode(w, r, &in) {
		return
	}
	sale, err := a.shop.RecordSale(r.Context(), in.ProductID, in.Quantity)
	respond(w, r, http.StatusCreated, sale, err)
}

func (a *app) listSales(w http.ResponseWriter, r *http.Request) {
	list, err := a.shop.ListSales(r.Context())
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) salesSummary(w http.ResponseWriter, r *http.Request) {
	list, err := a.shop.Summary(r.Context())
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) runningAds(w http.ResponseWriter, r *http.Request) {
	placement := commerce.Placement(r.URL.Query().Get("placement"))
	if placement == "" {
		placement = commerce.PlacementHome
	}
	list, err := a.ads.Running(r.Context(), placement)
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) listAds(w http.ResponseWriter, r *http.Request) {
	list, err := a.ads.List(r.Context())
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) createAd(w http.ResponseWriter, r *http.Request) {
	var in service.AdInput
	if !decode(w, r, &in) {
		return
	}
	ad, err := a.ads.Create(r.Context(), in)
	respond(w, r, http.StatusCreated, ad, err)
}

func (a *app) updateAd(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in service.AdInput
	if !decode(w, r, &in) {
		return
	}
	ad, err := a.ads.Update(r.Context(), id, in)
	respond(w, r, http.StatusOK, ad, err)
}

func (a *app) deleteAd(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	respond(w, r, 0, nil, a.ads.Delete(r.Context(), id))
}

// formFile opens the "file" part of a multipart upload no larger than limit bytes.
func formFile(w http.ResponseWriter, r *http.Request, limit int64) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	f, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: expected a multipart form with a file field: %v", service.ErrInvalid, err)
	}
	return f, header.Filename, nil
}

func (a *app) uploadFile(w http.ResponseWriter, r *http.Request) {
	f, name, err := formFile(w, r, a.cfg.MaxUploadMB<<20)
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	defer f.Close()
	res, err := a.uploads.UploadFile(r.Context(), name, f)
	respond(w, r, http.StatusCreated, res, err)
}

func (a *app) extractUpload(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FileURL string `json:"file_url"`
	}
	if !decode(w, r, &in) {
		return
	}
	res, err := a.uploads.ExtractDataFromUploadedFile(r.Context(), in.FileURL)
	respond(w, r, http.StatusOK, res, err)
}

func (a *app) importCourts(w http.ResponseWriter, r *http.Request) {
	f, name, err := formFile(w, r, a.cfg.MaxUploadMB<<20)
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	res, err := a.imports.ImportCourts(r.Context(), media.Classify(name).Kind, data)
	respond(w, r, http.StatusCreated, res, err)
}

func (a *app) exportTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="canchas.csv"`)
	if err := a.imports.ExportTemplate(w); err != nil {
		respond(w, r, 0, nil, err)
	}
}
