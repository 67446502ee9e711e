package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"stockgenius/pkg/stockgenius"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type selectPayload struct {
	RiskTier      string `json:"risk_tier" validate:"max=64"`
	Strategy      string `json:"strategy" validate:"max=2000"`
	CustomTickers string `json:"custom_tickers" validate:"max=2000"`
}

type advicePayload struct {
	RiskTier string `json:"risk_tier" validate:"required,max=64"`
	Duration string `json:"duration" validate:"required,max=64"`
	Strategy string `json:"strategy" validate:"max=2000"`
}

type simulationPayload struct {
	Amount       float64 `json:"amount" validate:"gt=0"`
	PeriodMonths int     `json:"period_months" validate:"gt=0,lte=1200"`
	RiskTier     string  `json:"risk_tier" validate:"max=64"`
	Strategy     string  `json:"strategy" validate:"max=2000"`
	Seed         *uint64 `json:"seed"`
}

type narrationPayload struct {
	Amount       float64 `json:"amount" validate:"gt=0"`
	PeriodMonths int     `json:"period_months" validate:"gt=0,lte=1200"`
	RiskTier     string  `json:"risk_tier" validate:"max=64"`
}

type comparisonPayload struct {
	Target      string         `json:"target" validate:"required,max=16"`
	Competitors competitorList `json:"competitors" validate:"max=20"`
}

type reportPayload struct {
	Target      string         `json:"target" validate:"required,max=16"`
	Competitors competitorList `json:"competitors" validate:"max=20"`
	RiskTier    string         `json:"risk_tier" validate:"max=64"`
	Strategy    string         `json:"strategy" validate:"max=2000"`
}

// competitorList accepts either a JSON array of tickers or a comma-separated string.
type competitorList []string

func (c *competitorList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*c = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*c = stockgenius.SplitCompetitors(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("competitors must be a list or a comma-separated string")
	}
	*c = list
	return nil
}

type riskTierInfo struct {
	Tier           stockgenius.RiskTier `json:"tier"`
	BaseRisk       float64              `json:"base_risk"`
	DefaultTickers []string             `json:"default_tickers"`
}

type comparisonResponse struct {
	Comparison *stockgenius.ComparisonTable `json:"comparison"`
	Table      stockgenius.FormattedTable   `json:"table"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Market  string `json:"market_data,omitempty"`
	LLM     string `json:"llm,omitempty"`
	Journal bool   `json:"journal"`
}

// validatePayload runs the struct tags and flattens the first failure into a readable message.
func validatePayload(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Errorf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%s failed %s", fe.Field(), fe.Tag())
	}
	return err
}
