package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"realestate-crm/config"
	"realestate-crm/installment"
	"realestate-crm/repository"
)

// OverpaymentPolicy decides what happens to money an installment or the
// down payment could not absorb.
type OverpaymentPolicy string

const (
	// OverpayCarry moves the excess on to the next open installments.
	OverpayCarry OverpaymentPolicy = "carry"
	// OverpayReturn stops at the first target and reports the excess.
	OverpayReturn OverpaymentPolicy = "return"
)

type Options struct {
	RetryLimit  int
	Overpayment OverpaymentPolicy
	LateFee     installment.LateFeePolicy
	Now         func() time.Time
	Logger      *slog.Logger
}

// OptionsFromConfig maps the environment settings onto service options.
func OptionsFromConfig(cfg config.Config, logger *slog.Logger) Options {
	var policy installment.LateFeePolicy = installment.FlatPolicy{
		Amount:    cfg.LateFeeAmount,
		GraceDays: cfg.LateFeeGraceDays,
	}
	if cfg.LateFeeMode == "per_day" {
		policy = installment.PerDayPolicy{
			Rate:      cfg.LateFeeAmount,
			GraceDays: cfg.LateFeeGraceDays,
			Cap:       cfg.LateFeeCap,
		}
	}
	return Options{
		RetryLimit:  cfg.PaymentRetryLimit,
		Overpayment: OverpaymentPolicy(cfg.OverpaymentPolicy),
		LateFee:     policy,
		Logger:      logger,
	}
}

func (o Options) withDefaults() Options {
	if o.RetryLimit < 1 {
		o.RetryLimit = 3
	}
	if o.Overpayment == "" {
		o.Overpayment = OverpayCarry
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// retry reruns fn while it fails with a version conflict, up to RetryLimit
// attempts in total.
func (o Options) retry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= o.RetryLimit; attempt++ {
		if err = fn(); !isConflict(err) {
			return err
		}
		o.Logger.Warn("concurrent modification", "op", op, "attempt", attempt, "limit", o.RetryLimit)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

func isConflict(err error) bool {
	return errors.Is(err, repository.ErrConcurrentModification)
}
