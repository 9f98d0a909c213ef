package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
)

// SearchQuery is the raw, string-typed search input as it arrives in the
// query string. Validate it with ListingService.Search.
type SearchQuery struct {
	OperationType string `form:"operationType" validate:"omitempty,oneof=sale rent"`
	PropertyType  string `form:"propertyType" validate:"omitempty,oneof=apartment house"`
	Location      string `form:"location" validate:"omitempty,max=255"`
	MinPrice      string `form:"minPrice" validate:"omitempty,numeric"`
	MaxPrice      string `form:"maxPrice" validate:"omitempty,numeric"`
	Rooms         string `form:"rooms" validate:"omitempty,number"`
	Floors        string `form:"floors" validate:"omitempty,number"`
}

// ListingInput is the body of create and update requests. On update, nil
// fields are left unchanged.
type ListingInput struct {
	Title         *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0,lte=99999999.99,maxdecimals=2"`
	Location      *string  `json:"location" validate:"omitempty,min=1,max=255"`
	OperationType *string  `json:"operationType" validate:"omitempty,oneof=sale rent"`
	PropertyType  *string  `json:"propertyType" validate:"omitempty,oneof=apartment house"`
	Rooms         *int     `json:"rooms" validate:"omitempty,gte=0"`
	Floors        *int     `json:"floors" validate:"omitempty,gte=0"`
}

type ListingService struct {
	listings repository.ListingStore
	validate *validator.Validate
}

func NewListingService(store *repository.Store) *ListingService {
	return &ListingService{listings: store.Listings, validate: newValidator()}
}

func (s *ListingService) List(ctx context.Context) ([]models.Listing, error) {
	return nonNil(s.listings.List(ctx))
}

func (s *ListingService) ListByOwner(ctx context.Context, ownerID uint) ([]models.Listing, error) {
	return nonNil(s.listings.ByOwner(ctx, ownerID))
}

func (s *ListingService) Get(ctx context.Context, id uint) (*models.Listing, error) {
	l, err := s.listings.ByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Listing not found")
	}
	return l, nil
}

// Search validates q and runs the resulting conjunctive filter.
func (s *ListingService) Search(ctx context.Context, q SearchQuery) ([]models.Listing, error) {
	f, err := s.ParseFilter(q)
	if err != nil {
		return nil, err
	}
	return nonNil(s.listings.Search(ctx, f))
}

// ParseFilter turns q into a typed filter or a Validation error listing every
// bad field.
func (s *ListingService) ParseFilter(q SearchQuery) (models.ListingFilter, error) {
	if err := s.validate.Struct(q); err != nil {
		return models.ListingFilter{}, apierrors.FromBinding(err)
	}

	f := models.ListingFilter{
		OperationType: q.OperationType,
		PropertyType:  q.PropertyType,
		Location:      strings.TrimSpace(q.Location),
	}
	if q.MinPrice != "" {
		v, _ := strconv.ParseFloat(q.MinPrice, 64)
		f.MinPrice = &v
	}
	if q.MaxPrice != "" {
		v, _ := strconv.ParseFloat(q.MaxPrice, 64)
		f.MaxPrice = &v
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return models.ListingFilter{}, apierrors.Field("minPrice", "minPrice must not be greater than maxPrice")
	}

	var fields []apierrors.FieldError
	if q.Rooms != "" {
		v, err := strconv.Atoi(q.Rooms)
		if err != nil {
			fields = append(fields, apierrors.FieldError{Field: "rooms", Message: "rooms is out of range"})
		}
		f.Rooms = &v
	}
	if q.Floors != "" {
		v, err := strconv.Atoi(q.Floors)
		if err != nil {
			fields = append(fields, apierrors.FieldError{Field: "floors", Message: "floors is out of range"})
		}
		f.Floors = &v
	}
	if len(fields) > 0 {
		return models.ListingFilter{}, apierrors.Validation(fields...)
	}
	return f, nil
}

// Create stores a listing owned by ownerID. Title, price, location and both
// type enums are required.
func (s *ListingService) Create(ctx context.Context, ownerID uint, in ListingInput) (*models.Listing, error) {
	if err := s.validateInput(in, true); err != nil {
		return nil, err
	}

	l := &models.Listing{OwnerID: ownerID}
	apply(l, in)
	if err := s.listings.Create(ctx, l); err != nil {
		return nil, err
	}
	listingsCreatedTotal.Inc()
	return s.Get(ctx, l.ID)
}

// Update applies the non-nil fields of in. Only the owner may update.
func (s *ListingService) Update(ctx context.Context, userID, id uint, in ListingInput) (*models.Listing, error) {
	l, err := s.owned(ctx, userID, id, "You do not have permission to update this listing")
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(in, false); err != nil {
		return nil, err
	}

	apply(l, in)
	if err := s.listings.Update(ctx, l); err != nil {
		return nil, notFound(err, "Listing not found")
	}
	return s.Get(ctx, id)
}

// Delete removes a listing. Only the owner may delete.
func (s *ListingService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.owned(ctx, userID, id, "You do not have permission to delete this listing"); err != nil {
		return err
	}
	return notFound(s.listings.Delete(ctx, id), "Listing not found")
}

func (s *ListingService) owned(ctx context.Context, userID, id uint, denied string) (*models.Listing, error) {
	l, err := s.listings.ByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Listing not found")
	}
	if l.OwnerID != userID {
		return nil, apierrors.Forbidden(denied)
	}
	return l, nil
}

func (s *ListingService) validateInput(in ListingInput, create bool) error {
	var fields []apierrors.FieldError
	if err := s.validate.Struct(in); err != nil {
		var apiErr *apierrors.APIError
		if errors.As(apierrors.FromBinding(err), &apiErr) {
			fields = append(fields, apiErr.Fields...)
		}
	}
	if create {
		if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
			fields = append(fields, apierrors.FieldError{Field: "title", Message: "title is required"})
		}
		if in.Price == nil {
			fields = append(fields, apierrors.FieldError{Field: "price", Message: "price is required"})
		}
		if in.Location == nil || strings.TrimSpace(*in.Location) == "" {
			fields = append(fields, apierrors.FieldError{Field: "location", Message: "location is required"})
		}
		if in.OperationType == nil {
			fields = append(fields, apierrors.FieldError{Field: "operationType", Message: "operationType is required"})
		}
		if in.PropertyType == nil {
			fields = append(fields, apierrors.FieldError{Field: "propertyType", Message: "propertyType is required"})
		}
	}
	if len(fields) > 0 {
		return apierrors.Validation(fields...)
	}
	return nil
}

func apply(l *models.Listing, in ListingInput) {
	if in.Title != nil {
		l.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.Price != nil {
		l.Price = *in.Price
	}
	if in.Location != nil {
		l.Location = strings.TrimSpace(*in.Location)
	}
	if in.OperationType != nil {
		l.OperationType = *in.OperationType
	}
	if in.PropertyType != nil {
		l.PropertyType = *in.PropertyType
	}
	if in.Rooms != nil {
		l.Rooms = in.Rooms
	}
	if in.Floors != nil {
		l.Floors = in.Floors
	}
}

func nonNil(out []models.Listing, err error) ([]models.Listing, error) {
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Listing{}
	}
	return out, nil
}
