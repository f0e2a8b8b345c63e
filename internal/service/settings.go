package service

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

// Settings keys as stored in the settings table.
const (
	settingInterestRate = "default_interest_rate"
	settingTermDays     = "default_term_days"
	settingRenewDays    = "renew_days"
)

// ShopSettings loads the typed settings, falling back to defaults for
// any key that is absent or unparsable.
func (s *Service) ShopSettings() (models.ShopSettings, error) {
	out := models.DefaultShopSettings()

	if raw, ok, err := s.repo.GetSetting(settingInterestRate); err != nil {
		return out, err
	} else if ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			out.DefaultInterestRate = v
		}
	}

	if raw, ok, err := s.repo.GetSetting(settingTermDays); err != nil {
		return out, err
	} else if ok {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			out.DefaultTermDays = v
		}
	}

	if raw, ok, err := s.repo.GetSetting(settingRenewDays); err != nil {
		return out, err
	} else if ok {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			out.RenewDays = v
		}
	}

	return out, nil
}

// SaveShopSettings validates and persists the typed settings.
func (s *Service) SaveShopSettings(settings models.ShopSettings) error {
	if settings.DefaultInterestRate <= 0 || math.IsNaN(settings.DefaultInterestRate) ||
		math.IsInf(settings.DefaultInterestRate, 0) {
		return fmt.Errorf("%w: interest rate must be positive", ErrValidation)
	}
	if settings.DefaultTermDays <= 0 || settings.RenewDays <= 0 {
		return fmt.Errorf("%w: term and renew days must be positive", ErrValidation)
	}

	if err := s.repo.SetSetting(settingInterestRate,
		strconv.FormatFloat(settings.DefaultInterestRate, 'f', -1, 64)); err != nil {
		return err
	}
	if err := s.repo.SetSetting(settingTermDays, strconv.Itoa(settings.DefaultTermDays)); err != nil {
		return err
	}
	if err := s.repo.SetSetting(settingRenewDays, strconv.Itoa(settings.RenewDays)); err != nil {
		return err
	}

	s.log.Infof("Settings updated: rate=%.2f term=%d renew=%d",
		settings.DefaultInterestRate, settings.DefaultTermDays, settings.RenewDays)
	return nil
}
