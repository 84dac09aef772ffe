package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Collection is the on-disk description of the drop. Amounts are base-10
// integer strings in the smallest currency unit.
type Collection struct {
	CollectionID      string `yaml:"collection_id"`
	Name              string `yaml:"name"`
	Owner             string `yaml:"owner"`
	MaxSupply         int64  `yaml:"max_supply"`
	PerTransactionCap int64  `yaml:"per_transaction_cap"`
	ClaimRatio        int64  `yaml:"claim_ratio"`
	MintPaused        bool   `yaml:"mint_paused"`
	ClaimPaused       bool   `yaml:"claim_paused"`
	BaseURI           string `yaml:"base_uri"`
	MemberCost        string `yaml:"member_cost"`
	WhitelistCost     string `yaml:"whitelist_cost"`
	RegularCost       string `yaml:"regular_cost"`
	WhitelistQuota    int64  `yaml:"whitelist_quota"`
	CapBeneficiary    string `yaml:"cap_beneficiary"`
	FixedBeneficiary  string `yaml:"fixed_beneficiary"`
	ResidualRecipient string `yaml:"residual_recipient"`
	CapLifetime       string `yaml:"cap_lifetime"`
	FixedSharePercent int64  `yaml:"fixed_share_percent"`
	// CapSharePercent 0 routes everything after the fixed share to the cap
	// beneficiary until the lifetime cap is reached. With 75, a 4e18 payment
	// settles as 0.4e18 fixed, 3e18 cap and 0.6e18 residual.
	CapSharePercent int64 `yaml:"cap_share_percent"`
}

// DefaultCollection is the built-in drop used when COLLECTION_FILE is unset.
func DefaultCollection(cfg Config) Collection {
	return Collection{
		CollectionID:      "fighters-v2",
		Name:              "Fighters V2",
		Owner:             cfg.OwnerAddress,
		MaxSupply:         4000,
		PerTransactionCap: 5,
		ClaimRatio:        3,
		MemberCost:        "800000000000000000",
		WhitelistCost:     "900000000000000000",
		RegularCost:       "1000000000000000000",
		WhitelistQuota:    2,
		CapBeneficiary:    cfg.CapBeneficiary,
		FixedBeneficiary:  cfg.FixedBeneficiary,
		ResidualRecipient: cfg.ResidualRecipient,
		CapLifetime:       "5000000000000000000",
		FixedSharePercent: 10,
	}
}

// LoadCollection overlays the YAML file at path onto base. Keys missing from
// the file keep base's value.
func LoadCollection(path string, base Collection) (Collection, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Collection{}, fmt.Errorf("read collection file: %w", err)
	}
	return ParseCollection(data, base)
}

func ParseCollection(data []byte, base Collection) (Collection, error) {
	out := base
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		return Collection{}, fmt.Errorf("decode collection file: %w", err)
	}
	return out, nil
}
