package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

func fixture() []domain.Model {
	return []domain.Model{
		{
			Key:      "Batmobile",
			Designer: domain.Str("Larry Wood"),
			Variants: []domain.Variant{
				{Year: "1968", Color: domain.Str("black"), ImagePath: domain.Str("t"), ID: "V123"},
				{Year: "1989", Color: domain.Str("purple"), ID: "V124"},
			},
		},
		{
			Key:         "Hot_Rod_Special",
			Description: domain.Str("A <b>classic</b> hot rod &amp; more"),
			Variants: []domain.Variant{
				{Year: "1970", Color: domain.Str("red"), Series: domain.Str("Classics"), ImagePath: domain.Str("t"), ID: "V200"},
				{Year: "1971", Color: domain.Str("blue"), ID: "V201"},
				{Year: "1975", Color: domain.Str("green"), ID: "V202"},
			},
		},
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context) ([]domain.Model, error) {
	return nil, fmt.Errorf("%w: read catalog: %w", domain.ErrDataUnavailable, errors.New("disk gone"))
}

func (failingStore) Save(context.Context, []domain.Model) error {
	return fmt.Errorf("%w: write catalog: %w", domain.ErrDataUnavailable, errors.New("disk gone"))
}

// stubImages resolves every variant with an image to a fixed URL, except
// those listed in fail.
type stubImages struct {
	fail map[string]bool
}

func (s stubImages) Resolve(_ context.Context, v domain.Variant) (string, bool, error) {
	if s.fail[v.ID] {
		return "", false, errors.New("presign failed")
	}
	if !v.HasImage() {
		return "", false, nil
	}
	return "https://img.example.com/" + v.ID + ".webp", true, nil
}
