package target

import (
	"slices"
	"strings"
)

// CUDAFlag is the installer argument prefix carrying a CUDA major version.
const CUDAFlag = "--cuda="

var cudaPackages = map[string][]string{
	"11": {"nvidia-nccl-cu11", "nvidia-cuda-runtime-cu11", "nvidia-cublas-cu11", "nvidia-curand-cu11"},
	"12": {"nvidia-nccl-cu12", "nvidia-cuda-runtime-cu12", "nvidia-cublas-cu12", "nvidia-curand-cu12"},
}

// CUDAPackages returns the extra packages for a CUDA major version.
// Unknown or empty versions return nil.
func CUDAPackages(version string) []string {
	return slices.Clone(cudaPackages[version])
}

// CUDAVersions lists the versions CUDAPackages knows, sorted.
func CUDAVersions() []string {
	vs := make([]string, 0, len(cudaPackages))
	for v := range cudaPackages {
		vs = append(vs, v)
	}
	slices.Sort(vs)
	return vs
}

// StripCUDAFlag finds the first "--cuda=<version>" in args and returns its
// value together with a copy of args that omits it. args itself is never
// modified. Without the flag, found is false and rest equals args.
func StripCUDAFlag(args []string) (value string, rest []string, found bool) {
	for i, arg := range args {
		if v, ok := strings.CutPrefix(arg, CUDAFlag); ok {
			rest = make([]string, 0, len(args)-1)
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+1:]...)
			return v, rest, true
		}
	}
	return "", slices.Clone(args), false
}
