package handlers

import (
	"context"
	"time"

	"github.com/abramau/gavrila/internal/digest"
	"github.com/abramau/gavrila/internal/history"
)

// Poster delivers a composed digest to the home chat.
type Poster func(ctx context.Context, text string) error

// Handler exposes the operational surface: health, manual digest/purge
// triggers, and epoch-scoped transcript inspection.
type Handler struct {
	Store     *history.Store
	Epochs    *history.EpochRegistry
	Digest    *digest.Composer
	Post      Poster
	Retention time.Duration
}

func NewHandler(store *history.Store, epochs *history.EpochRegistry, d *digest.Composer, post Poster, retention time.Duration) *Handler {
	return &Handler{Store: store, Epochs: epochs, Digest: d, Post: post, Retention: retention}
}
