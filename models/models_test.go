package models

import "testing"

func TestValidUsername(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"letters", "chef", true},
		{"punctuation", "chef.anna+1@home-2_x", true},
		{"space", "chef anna", false},
		{"slash", "chef/anna", false},
		{"empty", "", false},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidUsername(tt.value); got != tt.want {
				t.Fatalf("ValidUsername(%q) = %t, want %t", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidColor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value string
		want  bool
	}{
		{"#E26C2D", true},
		{"#49b64e", true},
		{"E26C2D", false},
		{"#E26C2", false},
		{"#GGGGGG", false},
	}

	for _, tt := range cases {
		if got := ValidColor(tt.value); got != tt.want {
			t.Fatalf("ValidColor(%q) = %t, want %t", tt.value, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Breakfast":       "breakfast",
		"  Late Dinner  ": "late-dinner",
		"Soups & Stews!":  "soups-stews",
		"---":             "",
	}

	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, want)
		}
		if want != "" && !ValidSlug(want) {
			t.Fatalf("Slugify(%q) produced invalid slug %q", input, want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	if got := NormalizeEmail("  Chef@Example.COM "); got != "chef@example.com" {
		t.Fatalf("NormalizeEmail returned %q", got)
	}
}

func TestIngredientString(t *testing.T) {
	t.Parallel()

	ingredient := Ingredient{Name: "flour", MeasurementUnit: "g"}
	if got := ingredient.String(); got != "flour, g" {
		t.Fatalf("Ingredient.String() = %q", got)
	}
}
