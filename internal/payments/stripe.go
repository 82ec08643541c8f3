package payments

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/account"
	"github.com/stripe/stripe-go/v76/accountlink"

	"github.com/eshop/backend/internal/config"
)

// Provider creates an external payment account for a seller and returns an
// onboarding URL. Stripe API semantics are entirely the collaborator's.
type Provider interface {
	// CreateOnboardingLink reuses accountID when non-empty, otherwise creates
	// a new connected account. It returns the (possibly new) account id and
	// the onboarding URL.
	CreateOnboardingLink(email, country, accountID string) (string, string, error)
}

// StripeClient implements Provider on Stripe Connect express accounts.
type StripeClient struct {
	cfg    *config.StripeConfig
	logger *logrus.Logger
}

func NewStripeClient(cfg *config.StripeConfig, logger *logrus.Logger) *StripeClient {
	stripe.Key = cfg.SecretKey
	return &StripeClient{cfg: cfg, logger: logger}
}

func (c *StripeClient) CreateOnboardingLink(email, country, accountID string) (string, string, error) {
	if accountID == "" {
		params := &stripe.AccountParams{
			Type:    stripe.String(string(stripe.AccountTypeExpress)),
			Email:   stripe.String(email),
			Country: stripe.String(country),
			Capabilities: &stripe.AccountCapabilitiesParams{
				CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
					Requested: stripe.Bool(true),
				},
				Transfers: &stripe.AccountCapabilitiesTransfersParams{
					Requested: stripe.Bool(true),
				},
			},
		}

		acct, err := account.New(params)
		if err != nil {
			return "", "", fmt.Errorf("failed to create stripe account: %w", err)
		}
		accountID = acct.ID

		c.logger.WithFields(logrus.Fields{
			"email":   email,
			"account": accountID,
		}).Info("Stripe account created")
	}

	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(c.cfg.RefreshURL),
		ReturnURL:  stripe.String(c.cfg.ReturnURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to create stripe account link: %w", err)
	}

	return accountID, link.URL, nil
}
