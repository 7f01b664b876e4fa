package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

type SubscriptionService interface {
	CreateCheckout(ctx context.Context, userID string) (*transfer.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type subscriptionService struct {
	cfg      config.Stripe
	sc       *client.API
	profiles repository.ProfileRepository
}

func NewSubscriptionService(cfg config.Stripe, profiles repository.ProfileRepository) SubscriptionService {
	s := &subscriptionService{cfg: cfg, profiles: profiles}
	if cfg.SecretKey != "" {
		s.sc = client.New(cfg.SecretKey, nil)
	}
	return s
}

func (s *subscriptionService) CreateCheckout(ctx context.Context, userID string) (*transfer.CheckoutResponse, error) {
	profile, err := requireProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if s.sc == nil {
		return nil, &apperrors.ConfigurationError{Setting: "STRIPE_SECRET_KEY"}
	}
	if s.cfg.PriceID == "" {
		return nil, &apperrors.ConfigurationError{Setting: "STRIPE_PRICE_ID"}
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(userID),
	}
	if profile.StripeCustomerID != "" {
		params.Customer = stripe.String(profile.StripeCustomerID)
	}
	params.Context = ctx

	session, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		slog.Error("stripe checkout failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &transfer.CheckoutResponse{URL: session.URL}, nil
}

func (s *subscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		return &apperrors.ConfigurationError{Setting: "STRIPE_WEBHOOK_SECRET"}
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		slog.Info(err.Error())
		return &apperrors.NotAuthenticatedError{Reason: "Invalid webhook signature"}
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("error parsing checkout session: %w", err)
		}
		if session.ClientReferenceID == "" || session.Customer == nil || session.Subscription == nil {
			slog.Warn("checkout session without user or subscription", "session_id", session.ID)
			return nil
		}
		status := string(session.Subscription.Status)
		if status == "" {
			status = string(stripe.SubscriptionStatusActive)
		}
		err := s.profiles.SetSubscription(ctx, session.ClientReferenceID, session.Customer.ID, session.Subscription.ID, status)
		if err != nil {
			return notFoundAs(err, "Business profile")
		}
		slog.Info("subscription started", "user_id", session.ClientReferenceID, "subscription_id", session.Subscription.ID)

	case stripe.EventTypeCustomerSubscriptionUpdated, stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("error parsing subscription: %w", err)
		}
		status := string(sub.Status)
		if event.Type == stripe.EventTypeCustomerSubscriptionDeleted {
			status = string(stripe.SubscriptionStatusCanceled)
		}
		if err := s.profiles.UpdateSubscriptionStatus(ctx, sub.ID, status); err != nil {
			return notFoundAs(err, "Subscription")
		}
		slog.Info("subscription status changed", "subscription_id", sub.ID, "status", status)

	default:
		slog.Info("ignored stripe event", "type", event.Type)
	}
	return nil
}
