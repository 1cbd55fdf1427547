package handlers

import (
	"bytes"
	"net/http"

	"winelabel/internal/dto"
	"winelabel/internal/entities"
	"winelabel/internal/label"
	applog "winelabel/internal/log"
	"winelabel/internal/notify"
	"winelabel/internal/session"
	"winelabel/internal/spreadsheet"
	"winelabel/internal/validation"
	"winelabel/internal/views/components"
	"winelabel/internal/views/pages"
	"winelabel/internal/views/theme"
	"winelabel/models"
)

const productsPath = "/products"

var productNotFound = components.NotFound{
	Title:     "Product not found",
	Message:   "The product you are looking for does not exist or has been deleted.",
	BackPath:  productsPath,
	BackLabel: "Back to products",
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, products := h.products(r)
	records, err := products.List(ctx)
	v := view{title: "Products", section: "products"}
	if err != nil {
		applog.Error(r.Context(), "failed to list products", "error", err)
		flash := notify.Notification{
			Title:       "Error",
			Description: "Failed to load products. Please try again.",
			Variant:     notify.VariantDestructive,
		}
		v.flash = &flash
	}
	filters := pages.ListFiltersFromRequest(r)
	v.content = pages.Products(pages.ProductsData{
		Products: pages.FilterProducts(records, filters),
		Query:    filters.Query,
		Total:    len(records),
	})
	h.render(w, r, v)
}

func (h *Handlers) ShowProduct(w http.ResponseWriter, r *http.Request) {
	ctx, products := h.products(r)
	product, err := products.Get(ctx, r.PathValue("id"))
	if err != nil {
		h.loadFailed(w, r, err, "products", productNotFound)
		return
	}

	publicLink := label.PublicLink(h.links.PublicBaseURL, product.ID)
	shortLink := ""
	if product.ExternalShortLink != "" {
		shortLink = product.ExternalShortLink
	} else if product.ShortCode != "" {
		shortLink = label.ShortLink(h.links.PublicBaseURL, product.ShortCode)
	}
	qr := product.QRCodeURL
	if qr == "" {
		qr = label.QRCodeURL(h.links.QRService, publicLink, h.links.QRSize)
	}

	h.render(w, r, view{
		title:   product.Name,
		section: "products",
		content: pages.ProductDetail(pages.ProductDetailData{
			Product:    product,
			PublicLink: publicLink,
			ShortLink:  shortLink,
			QRCodeURL:  qr,
			Theme:      theme.ForProductType(product.Type),
		}),
	})
}

func (h *Handlers) NewProduct(w http.ResponseWriter, r *http.Request) {
	h.renderProductForm(w, r, h.newProductForm(r, dto.ProductInput{}), nil)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	input, errs := productForm(r)
	if len(errs) > 0 {
		h.rejectProductForm(w, r, h.newProductForm(r, input), errs)
		return
	}

	ctx, products := h.products(r)
	result := products.Create(ctx, input)
	if !result.OK() {
		h.productMutationFailed(w, r, h.newProductForm(r, input), result)
		return
	}
	h.forgetAppellations(r, input)
	h.sessions.Flash(r.Context(), notify.Mutation(result))
	session.Redirect(w, r, productsPath)
}

func (h *Handlers) EditProduct(w http.ResponseWriter, r *http.Request) {
	ctx, products := h.products(r)
	product, err := products.Get(ctx, r.PathValue("id"))
	if err != nil {
		h.loadFailed(w, r, err, "products", productNotFound)
		return
	}
	h.renderProductForm(w, r, h.editProductForm(r, product.ID, dto.ProductInputFrom(product)), nil)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	input, errs := productForm(r)
	if len(errs) > 0 {
		h.rejectProductForm(w, r, h.editProductForm(r, id, input), errs)
		return
	}

	ctx, products := h.products(r)
	result := products.Update(ctx, entities.UpdateProductInput{ID: id, Data: productPatch(input)})
	if !result.OK() {
		h.productMutationFailed(w, r, h.editProductForm(r, id, input), result)
		return
	}
	h.forgetAppellations(r, input)
	h.sessions.Flash(r.Context(), notify.Mutation(result))
	session.Redirect(w, r, productsPath+"/"+id)
}

func (h *Handlers) DuplicateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, products := h.products(r)
	result := products.Duplicate(ctx, r.PathValue("id"))
	h.sessions.Flash(r.Context(), notify.Mutation(result))
	if copied, ok := result.Record.(models.Product); ok && result.OK() {
		session.Redirect(w, r, productsPath+"/"+copied.ID+"/edit")
		return
	}
	session.Redirect(w, r, productsPath)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, products := h.products(r)
	result := products.Delete(ctx, r.PathValue("id"))
	h.sessions.Flash(r.Context(), notify.Mutation(result))
	session.Redirect(w, r, productsPath)
}

// ExportProducts downloads every product as a workbook.
func (h *Handlers) ExportProducts(w http.ResponseWriter, r *http.Request) {
	ctx, products := h.products(r)
	records, err := products.List(ctx)
	if err != nil {
		applog.Error(r.Context(), "failed to load products for export", "error", err)
		h.sessions.Flash(r.Context(), notify.Notification{
			Title:       "Export failed",
			Description: "Failed to export products. Please try again.",
			Variant:     notify.VariantDestructive,
		})
		session.Redirect(w, r, productsPath)
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.ExportProducts(&buf, records); err != nil {
		applog.Error(r.Context(), "failed to write products workbook", "error", err)
		http.Error(w, "failed to export products", http.StatusInternalServerError)
		return
	}
	h.sessions.Flash(r.Context(), notify.Exported(entities.EntityProduct, spreadsheet.ProductsFilename))
	download(w, spreadsheet.ProductsFilename, buf.Bytes())
}

func download(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", spreadsheet.MIMEXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handlers) newProductForm(r *http.Request, input dto.ProductInput) pages.ProductFormData {
	data := h.productFormData(r, input)
	data.Title = "New product"
	data.Action = productsPath
	data.Submit = "Create product"
	data.CancelPath = productsPath
	data.FormPath = productsPath + "/new"
	return data
}

func (h *Handlers) editProductForm(r *http.Request, id string, input dto.ProductInput) pages.ProductFormData {
	data := h.productFormData(r, input)
	data.Title = "Edit product"
	data.Action = productsPath + "/" + id
	data.Submit = "Save changes"
	data.CancelPath = productsPath + "/" + id
	data.FormPath = productsPath + "/" + id + "/edit"
	return data
}

// productFormData loads the appellation and ingredient choices. A failed load leaves
// the choice empty; the form still renders.
func (h *Handlers) productFormData(r *http.Request, input dto.ProductInput) pages.ProductFormData {
	ctx, appellations := h.appellations(r)
	choices, err := appellations.List(ctx)
	if err != nil {
		applog.Error(r.Context(), "failed to load appellations", "error", err)
	}
	_, ingredients := h.ingredients(r)
	options, err := ingredients.List(ctx)
	if err != nil {
		applog.Error(r.Context(), "failed to load ingredients", "error", err)
	}
	return pages.NewProductForm(input, choices, options)
}

// forgetAppellations drops the cached appellation list after a save that may have
// created one by name.
func (h *Handlers) forgetAppellations(r *http.Request, input dto.ProductInput) {
	if input.AppellationID != nil || input.Appellation == "" {
		return
	}
	h.forgetAppellationList(r)
}

func (h *Handlers) renderProductForm(w http.ResponseWriter, r *http.Request, data pages.ProductFormData, flash *notify.Notification) {
	h.render(w, r, view{title: data.Title, section: "products", content: pages.ProductForm(data), flash: flash})
}

func (h *Handlers) rejectProductForm(w http.ResponseWriter, r *http.Request, data pages.ProductFormData, errs map[string]string) {
	for field, msg := range errs {
		data.Errors[field] = msg
	}
	flash := notify.Validation(&validation.Error{Fields: errs})
	h.renderProductForm(w, r, data, &flash)
}

func (h *Handlers) productMutationFailed(w http.ResponseWriter, r *http.Request, data pages.ProductFormData, result entities.MutationResult) {
	for field, msg := range fieldErrors(result.Err) {
		data.Errors[field] = msg
	}
	flash := notify.Mutation(result)
	h.renderProductForm(w, r, data, &flash)
}
