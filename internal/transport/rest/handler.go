// Package rest provides HTTP handlers for inventory operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/adenisov/bookstock/internal/catalog"
	berrors "github.com/adenisov/bookstock/internal/errors"
	"github.com/adenisov/bookstock/internal/ledger"
	"github.com/adenisov/bookstock/internal/media"
	"github.com/adenisov/bookstock/internal/store"
	"github.com/adenisov/bookstock/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Machine-readable error codes returned to callers.
const (
	codeValidation        = "validation_error"
	codeNotFound          = "not_found"
	codeInsufficientStock = "insufficient_stock"
	codeUploadFailed      = "upload_failed"
	codeStorage           = "storage_error"
)

type Handler struct {
	ledger         ledger.Service
	catalog        catalog.Browser
	resolver       media.Resolver
	store          store.BookStore
	maxUploadBytes int64
	validate       *validator.Validate
	logger         *slog.Logger
}

// NewHandler creates a new inventory API handler with the provided collaborators.
func NewHandler(ledgerSvc ledger.Service, browser catalog.Browser, resolver media.Resolver, bookStore store.BookStore, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		ledger:         ledgerSvc,
		catalog:        browser,
		resolver:       resolver,
		store:          bookStore,
		maxUploadBytes: maxUploadBytes,
		validate:       validator.New(),
		logger:         logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the inventory service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/books", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Restock)
		r.Post("/sell", h.Sell)
		r.Get("/{name}", h.FindByName)
	})
	r.Post("/api/v1/uploads", h.Upload)

	r.Get("/healthz", h.HealthCheck)
}

// RestockRequest is the payload for creating or replenishing a book.
type RestockRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Price       int64  `json:"price"       validate:"min=0"`
	Quantity    int64  `json:"quantity"    validate:"required,gt=0"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	ImageURL    string `json:"image_url"   validate:"omitempty,url"`
}

// SellRequest is the payload for selling a book.
type SellRequest struct {
	Name     string `json:"name"     validate:"required,max=200"`
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
}

// BookResponse is the caller-visible shape of a book record.
type BookResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// UploadResponse carries the URL assigned by the media host.
type UploadResponse struct {
	ID      string `json:"id"`
	FileURL string `json:"file_url"`
}

// List retrieves all books.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to list books")
	books, err := h.catalog.List(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving book list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, codeStorage, "Failed to fetch books")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved book list", "count", len(books))
	web.RespondJSON(w, mLogger, http.StatusOK, toResponseList(books))
}

// FindByName retrieves a single book by name.
func (h *Handler) FindByName(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	name := chi.URLParam(r, "name")
	mLogger.DebugContext(r.Context(), "Received request to find book", "name", name)
	found, err := h.catalog.FindByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, berrors.ErrBookNotFound) {
			mLogger.WarnContext(r.Context(), "Book not found", "name", name)
			web.RespondError(w, mLogger, http.StatusNotFound, codeNotFound, fmt.Sprintf("Book %q not found", name))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving book", "name", name, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, codeStorage, fmt.Sprintf("Failed to retrieve book %q", name))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toResponse(found))
}

// Restock handles creation or replenishment of a book.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req RestockRequest
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to restock book", "name", req.Name, "quantity", req.Quantity)

	book, err := h.ledger.Restock(r.Context(), ledger.RestockParams{
		Name:        req.Name,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.respondLedgerError(w, r, mLogger, err, "restock")
		return
	}
	mLogger.InfoContext(r.Context(), "Book restocked", "name", book.Name, "quantity", book.Quantity)
	web.RespondJSON(w, mLogger, http.StatusOK, toResponse(book))
}

// Sell handles selling a book.
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req SellRequest
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to sell book", "name", req.Name, "quantity", req.Quantity)

	book, err := h.ledger.Sell(r.Context(), req.Name, req.Quantity)
	if err != nil {
		h.respondLedgerError(w, r, mLogger, err, "sell")
		return
	}
	mLogger.InfoContext(r.Context(), "Book sold", "name", book.Name, "quantity", book.Quantity)
	web.RespondJSON(w, mLogger, http.StatusOK, toResponse(book))
}

// Upload accepts a multipart file, forwards it to the media host and
// persists the returned URL. The ledger is never involved, so a failed
// upload leaves inventory state untouched.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		mLogger.WarnContext(r.Context(), "No file in upload request", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, codeValidation, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error reading uploaded file", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, codeValidation, "Failed to read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	mLogger.DebugContext(r.Context(), "Received upload", "filename", header.Filename, "size", len(data), "content_type", contentType)

	fileURL, err := h.resolver.Upload(r.Context(), data, contentType)
	if err != nil {
		var uploadErr *media.UploadError
		if errors.As(err, &uploadErr) {
			mLogger.WarnContext(r.Context(), "Media host rejected upload", "error", err)
			web.RespondError(w, mLogger, http.StatusBadGateway, codeUploadFailed, uploadErr.Message)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error uploading file", "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, codeUploadFailed, "Failed to upload file")
		return
	}

	record, err := h.store.SaveUploadRecord(r.Context(), fileURL)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error saving upload record", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, codeStorage, "Failed to save upload record")
		return
	}
	mLogger.InfoContext(r.Context(), "File uploaded", "id", record.ID, "file_url", record.FileURL)
	web.RespondJSON(w, mLogger, http.StatusCreated, UploadResponse{
		ID:      record.ID.String(),
		FileURL: record.FileURL,
	})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation, writing the error response itself on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, codeValidation, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"code": codeValidation, "validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, codeValidation, "Invalid request body")
		return false
	}
	return true
}

// respondLedgerError maps ledger error kinds onto HTTP responses.
func (h *Handler) respondLedgerError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, op string) {
	var validationErr *ledger.ValidationError
	var stockErr *ledger.InsufficientStockError
	switch {
	case errors.As(err, &validationErr):
		mLogger.WarnContext(r.Context(), "Invalid ledger arguments", "op", op, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, codeValidation, validationErr.Error())
	case errors.As(err, &stockErr):
		mLogger.WarnContext(r.Context(), "Insufficient stock", "name", stockErr.Name, "available", stockErr.Available, "requested", stockErr.Requested)
		web.RespondJSON(w, mLogger, http.StatusConflict, map[string]any{
			"code":      codeInsufficientStock,
			"error":     stockErr.Error(),
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	case errors.Is(err, berrors.ErrBookNotFound):
		mLogger.WarnContext(r.Context(), "Book not found", "op", op)
		web.RespondError(w, mLogger, http.StatusNotFound, codeNotFound, "Book not found")
	default:
		mLogger.ErrorContext(r.Context(), "Ledger operation failed", "op", op, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, codeStorage, fmt.Sprintf("Failed to %s book", op))
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}

func toResponse(book *store.Book) BookResponse {
	return BookResponse{
		ID:          book.ID.String(),
		Name:        book.Name,
		Price:       book.Price,
		Quantity:    book.Quantity,
		Description: book.Description,
		ImageURL:    book.ImageURL,
	}
}

func toResponseList(books []store.Book) []BookResponse {
	list := make([]BookResponse, len(books))
	for i := range books {
		list[i] = toResponse(&books[i])
	}
	return list
}
