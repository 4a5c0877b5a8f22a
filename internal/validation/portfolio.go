package validation

import (
	"strings"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

// ValidRiskProfile contains the allowed risk profile values. Empty is allowed.
var ValidRiskProfile = map[string]bool{
	"": true, "conservative": true, "moderate": true, "aggressive": true,
}

// ValidatePortfolio validates a portfolio create or replace request and returns
// the draft the portfolio service expects.
//
// Required fields:
//   - name: non-blank, 100 characters or less
//
// Optional fields:
//   - description: 500 characters or less
//   - riskProfile: conservative, moderate or aggressive
//   - initialCapital: must not be negative
func ValidatePortfolio(req request.PortfolioRequest) (model.PortfolioDraft, error) {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if len(req.Description) > 500 {
		errors["description"] = "description must be 500 characters or less"
	}

	riskProfile := strings.ToLower(strings.TrimSpace(req.RiskProfile))
	if !ValidRiskProfile[riskProfile] {
		errors["riskProfile"] = "riskProfile must be conservative, moderate or aggressive"
	}

	if req.InitialCapital.IsNegative() {
		errors["initialCapital"] = "initialCapital cannot be negative"
	}

	if err := errorOrNil(errors); err != nil {
		return model.PortfolioDraft{}, err
	}

	return model.PortfolioDraft{
		Name:           req.Name,
		Description:    req.Description,
		Objective:      strings.TrimSpace(req.Objective),
		RiskProfile:    riskProfile,
		InitialCapital: req.InitialCapital,
	}, nil
}
