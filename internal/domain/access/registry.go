package access

// GeneralDepartment is open to every employee and bypasses the code check.
const GeneralDepartment = "general"

// Registry maps department keys to their shared access codes. The mapping is
// injected at construction so tests and deployments can swap it out.
type Registry struct {
	codes map[string]string
}

func NewRegistry(codes map[string]string) *Registry {
	copied := make(map[string]string, len(codes))
	for department, code := range codes {
		copied[department] = code
	}
	return &Registry{codes: copied}
}

// Verify reports whether the supplied code grants access to the department.
// Unknown departments are denied. Codes are compared exactly and must never
// be logged by callers.
func (r *Registry) Verify(department, code string) bool {
	if department == GeneralDepartment {
		return true
	}
	expected, ok := r.codes[department]
	if !ok {
		return false
	}
	return expected == code
}

// Departments lists the restricted department keys, for diagnostics.
func (r *Registry) Departments() []string {
	keys := make([]string, 0, len(r.codes))
	for department := range r.codes {
		keys = append(keys, department)
	}
	return keys
}
