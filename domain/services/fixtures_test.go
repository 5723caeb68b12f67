package services

import (
	"hazboun-backend/domain/config"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/core/valueobjects"
)

func year(v int) *int { return &v }

func sampleDirectory() []entities.FamilyMember {
	return []entities.FamilyMember{
		{ID: "1", Name: "Elias Hazboun", BirthYear: year(1920), Location: "Bethlehem", Country: "Palestine", Branch: "Palestine Branch", Generation: 1, Profession: "Stonemason"},
		{ID: "2", Name: "Maryam Hazboun", Location: "Amman", Country: "Jordan", Branch: "Jordan Branch", Generation: 2, Parents: []string{"1"}, Profession: "Teacher"},
		{ID: "3", Name: "George Hazboun", Location: "Chicago", Country: "USA", Branch: "North America Branch", Generation: 2, Parents: []string{"1"}, Profession: "Engineer"},
		{ID: "4", Name: "Nadia Hazboun", Location: "Detroit", Country: "United States", Branch: "North America Branch", Generation: 3, Parents: []string{"3", "missing"}},
		{ID: "5", Name: "Karim Hazboun", Location: "Chicago", Country: "United States", Branch: "North America Branch", Generation: 3, Parents: []string{"3"}, Profession: "Physician"},
		{ID: "6", Name: "Rania Hazboun", Location: "Santiago", Country: "Chile", Branch: "South America Branch", Generation: 5},
	}
}

func normalizer() valueobjects.CountryNormalizer {
	return valueobjects.NewCountryNormalizer(config.DefaultDomainConfig().CountryAliases)
}
