package target

import (
	"slices"
	"testing"
)

func TestCUDAPackages(t *testing.T) {
	tests := []struct {
		version string
		want    []string
	}{
		{"11", []string{"nvidia-nccl-cu11", "nvidia-cuda-runtime-cu11", "nvidia-cublas-cu11", "nvidia-curand-cu11"}},
		{"12", []string{"nvidia-nccl-cu12", "nvidia-cuda-runtime-cu12", "nvidia-cublas-cu12", "nvidia-curand-cu12"}},
		{"9", nil},
		{"", nil},
		{"11.8", nil},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got := CUDAPackages(tt.version)
			if !slices.Equal(got, tt.want) {
				t.Errorf("CUDAPackages(%q) = %q, want %q", tt.version, got, tt.want)
			}
		})
	}
}

func TestCUDAPackagesReturnsCopy(t *testing.T) {
	pkgs := CUDAPackages("11")
	pkgs[0] = "mutated"
	if CUDAPackages("11")[0] != "nvidia-nccl-cu11" {
		t.Error("CUDAPackages must not expose the shared table")
	}
}

func TestCUDAVersions(t *testing.T) {
	if got := CUDAVersions(); !slices.Equal(got, []string{"11", "12"}) {
		t.Errorf("CUDAVersions() = %q", got)
	}
}

func TestStripCUDAFlag(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantValue string
		wantRest  []string
		wantFound bool
	}{
		{
			name:      "trailing flag",
			args:      []string{"bdist_wheel", "--cuda=11"},
			wantValue: "11",
			wantRest:  []string{"bdist_wheel"},
			wantFound: true,
		},
		{
			name:      "flag in the middle",
			args:      []string{"install", "--cuda=12", "--user"},
			wantValue: "12",
			wantRest:  []string{"install", "--user"},
			wantFound: true,
		},
		{
			name:      "only first occurrence consumed",
			args:      []string{"--cuda=11", "--cuda=12"},
			wantValue: "11",
			wantRest:  []string{"--cuda=12"},
			wantFound: true,
		},
		{
			name:      "unknown value still stripped",
			args:      []string{"--cuda=9"},
			wantValue: "9",
			wantRest:  []string{},
			wantFound: true,
		},
		{
			name:     "absent",
			args:     []string{"install", "--cuda", "11"},
			wantRest: []string{"install", "--cuda", "11"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := slices.Clone(tt.args)
			value, rest, found := StripCUDAFlag(tt.args)
			if value != tt.wantValue || found != tt.wantFound {
				t.Errorf("StripCUDAFlag() = (%q, %v), want (%q, %v)", value, found, tt.wantValue, tt.wantFound)
			}
			if !slices.Equal(rest, tt.wantRest) {
				t.Errorf("rest = %q, want %q", rest, tt.wantRest)
			}
			if !slices.Equal(tt.args, orig) {
				t.Errorf("input mutated: %q, was %q", tt.args, orig)
			}
		})
	}
}

func TestStripCUDAFlagThenPackages(t *testing.T) {
	args := []string{"install", "--cuda=11"}
	value, rest, _ := StripCUDAFlag(args)

	if slices.Contains(rest, "--cuda=11") {
		t.Errorf("downstream args still contain the flag: %q", rest)
	}
	if got := CUDAPackages(value); len(got) != 4 {
		t.Errorf("CUDAPackages(%q) = %q, want 4 packages", value, got)
	}
	if got := CUDAPackages("9"); len(got) != 0 {
		t.Errorf("CUDAPackages(9) = %q, want empty", got)
	}
}
