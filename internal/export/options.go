package export

// Options configures the exporter.
type Options struct {
	// EmitTfvars generates terraform.tfvars from the region when true.
	EmitTfvars bool
	// MaxParallel is the max number of components rendered in parallel per tier (0 = NumCPU).
	MaxParallel int
	// Outputs adds an output for the id of every vpc, subnet and instance.
	Outputs bool
}

// DefaultOptions returns default exporter options.
func DefaultOptions() Options {
	return Options{
		EmitTfvars:  true,
		MaxParallel: 0,
		Outputs:     true,
	}
}
