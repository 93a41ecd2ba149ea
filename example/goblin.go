// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package example holds a sample schema and data set used by the dynq
// command and the tests.
package example

import (
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/canonical/dynq"
)

type Taste int

const (
	Sweet Taste = iota
	Sour
	Bitter
	Salty
	Umami
)

var tasteNames = [...]string{"Sweet", "Sour", "Bitter", "Salty", "Umami"}

func (t Taste) String() string {
	if t < 0 || int(t) >= len(tasteNames) {
		return "Taste(?)"
	}
	return tasteNames[t]
}

func init() {
	dynq.MustRegisterEnum(Sweet, Sour, Bitter, Salty, Umami)
}

type ContractDetails struct {
	SigningTime  time.Time      `query:",clock" db:"signing_time" bson:"signingTime"`
	Duration     *time.Duration `db:"duration" bson:"duration"`
	DaysOfEffect *int           `db:"days_of_effect" bson:"daysOfEffect"`
}

type Contract struct {
	SigningDate time.Time       `query:",date" db:"signing_date" bson:"signingDate"`
	Details     ContractDetails `db:"details" bson:"details"`
}

type Goblin struct {
	ID                int         `db:"id" bson:"_id" json:"id"`
	Name              string      `db:"name" bson:"name" json:"name"`
	FavouriteLetter   rune        `query:",char" db:"favourite_letter" bson:"favouriteLetter" json:"favouriteLetter"`
	IntelligenceLevel int8        `db:"intelligence_level" bson:"intelligenceLevel" json:"intelligenceLevel"`
	Age               int16       `db:"age" bson:"age" json:"age"`
	PowerLevel        uint16      `db:"power_level" bson:"powerLevel" json:"powerLevel"`
	Stamina           uint8       `db:"stamina" bson:"stamina" json:"stamina"`
	ExperiencePoints  uint32      `db:"experience_points" bson:"experiencePoints" json:"experiencePoints"`
	MagicPower        int64       `db:"magic_power" bson:"magicPower" json:"magicPower"`
	Mana              uint64      `db:"mana" bson:"mana" json:"mana"`
	Strength          float32     `db:"strength" bson:"strength" json:"strength"`
	Agility           float64     `db:"agility" bson:"agility" json:"agility"`
	Salary            apd.Decimal `db:"salary" bson:"salary" json:"salary"`
	IsActive          bool        `db:"is_active" bson:"isActive" json:"isActive"`
	Taste             Taste       `db:"taste" bson:"taste" json:"taste"`
	DateOfBirth       time.Time   `db:"date_of_birth" bson:"dateOfBirth" json:"dateOfBirth"`
	DateOfConception  time.Time   `query:",offset" db:"date_of_conception" bson:"dateOfConception" json:"dateOfConception"`
	HobbitAncestry    *bool       `db:"hobbit_ancestry" bson:"hobbitAncestry" json:"hobbitAncestry"`
	Contract          *Contract   `db:"contract" bson:"contract" json:"contract"`
}

func decimal(s string) apd.Decimal {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return *d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clock(h, m int) time.Time {
	return time.Date(1, 1, 1, h, m, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

// Goblins returns a fresh copy of the sample data set.
func Goblins() []Goblin {
	return []Goblin{{
		ID: 1, Name: "Grizzle", FavouriteLetter: 'g', IntelligenceLevel: 7, Age: 35,
		PowerLevel: 1200, Stamina: 80, ExperiencePoints: 15000, MagicPower: 4200, Mana: 900,
		Strength: 36.5, Agility: 12.25, Salary: decimal("1200.50"), IsActive: true, Taste: Sour,
		DateOfBirth:      time.Date(1990, time.March, 14, 8, 15, 0, 0, time.UTC),
		DateOfConception: time.Date(1989, time.June, 20, 22, 0, 0, 0, time.FixedZone("", 2*60*60)),
		Contract: &Contract{
			SigningDate: date(2021, time.June, 1),
			Details: ContractDetails{
				SigningTime:  clock(9, 30),
				Duration:     ptr(720 * time.Hour),
				DaysOfEffect: ptr(30),
			},
		},
	}, {
		ID: 2, Name: "Snaggletooth", FavouriteLetter: 's', IntelligenceLevel: 3, Age: 52,
		PowerLevel: 800, Stamina: 40, ExperiencePoints: 42000, MagicPower: 150, Mana: 120,
		Strength: 51, Agility: 4.5, Salary: decimal("950"), IsActive: false, Taste: Bitter,
		DateOfBirth:      time.Date(1972, time.November, 2, 23, 40, 0, 0, time.UTC),
		DateOfConception: time.Date(1972, time.February, 1, 12, 0, 0, 0, time.UTC),
		HobbitAncestry:   ptr(true),
	}, {
		ID: 3, Name: "Bogwart", FavouriteLetter: 'b', IntelligenceLevel: 9, Age: 19,
		PowerLevel: 300, Stamina: 95, ExperiencePoints: 1200, MagicPower: 9800, Mana: 5000,
		Strength: 18.75, Agility: 30.1, Salary: decimal("400.25"), IsActive: true, Taste: Sweet,
		DateOfBirth:      time.Date(2005, time.January, 20, 6, 0, 0, 0, time.UTC),
		DateOfConception: time.Date(2004, time.April, 28, 3, 30, 0, 0, time.UTC),
		HobbitAncestry:   ptr(false),
		Contract: &Contract{
			SigningDate: date(2023, time.February, 15),
			Details:     ContractDetails{SigningTime: clock(14, 45)},
		},
	}, {
		ID: 4, Name: "Mudgrub", FavouriteLetter: 'm', IntelligenceLevel: 5, Age: 41,
		PowerLevel: 2500, Stamina: 60, ExperiencePoints: 30500, MagicPower: 0, Mana: 0,
		Strength: 72.25, Agility: 8, Salary: decimal("3000"), IsActive: true, Taste: Umami,
		DateOfBirth:      time.Date(1983, time.July, 30, 17, 5, 0, 0, time.UTC),
		DateOfConception: time.Date(1982, time.October, 30, 9, 0, 0, 0, time.UTC),
	}, {
		ID: 5, Name: "Nettlebane", FavouriteLetter: 'n', IntelligenceLevel: 8, Age: 27,
		PowerLevel: 1750, Stamina: 70, ExperiencePoints: 8800, MagicPower: 6100, Mana: 3100,
		Strength: 29, Agility: 25.5, Salary: decimal("780.75"), IsActive: false, Taste: Salty,
		DateOfBirth:      time.Date(1997, time.September, 9, 12, 0, 0, 0, time.UTC),
		DateOfConception: time.Date(1996, time.December, 15, 18, 45, 0, 0, time.UTC),
		HobbitAncestry:   ptr(true),
		Contract: &Contract{
			SigningDate: date(2019, time.December, 24),
			Details: ContractDetails{
				SigningTime:  clock(18, 0),
				Duration:     ptr(2160 * time.Hour),
				DaysOfEffect: ptr(90),
			},
		},
	}, {
		ID: 6, Name: "Wartnose", FavouriteLetter: 'w', IntelligenceLevel: 4, Age: 35,
		PowerLevel: 950, Stamina: 55, ExperiencePoints: 19900, MagicPower: 2300, Mana: 640,
		Strength: 44, Agility: 15.75, Salary: decimal("1500"), IsActive: true, Taste: Sour,
		DateOfBirth:      time.Date(1989, time.May, 5, 5, 5, 0, 0, time.UTC),
		DateOfConception: time.Date(1988, time.August, 12, 20, 20, 0, 0, time.UTC),
		HobbitAncestry:   ptr(false),
	}}
}
