package urlutil

import (
	"testing"

	"github.com/spiffcs/lockstale/internal/model"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		input   string
		want    model.Repository
		wantErr bool
	}{
		{"octo/hello", model.Repository{Owner: "octo", Name: "hello"}, false},
		{" octo/hello ", model.Repository{Owner: "octo", Name: "hello"}, false},
		{"https://github.com/octo/hello", model.Repository{Owner: "octo", Name: "hello"}, false},
		{"https://github.com/octo/hello.git", model.Repository{Owner: "octo", Name: "hello"}, false},
		{"https://github.com/octo/hello/issues/12", model.Repository{Owner: "octo", Name: "hello"}, false},
		{"git@github.com:octo/hello.git", model.Repository{Owner: "octo", Name: "hello"}, false},
		{"", model.Repository{}, true},
		{"octo", model.Repository{}, true},
		{"octo/", model.Repository{}, true},
		{"octo/hello/extra", model.Repository{}, true},
		{"https://github.com/octo", model.Repository{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRepository(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepository(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRepository(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
