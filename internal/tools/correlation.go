package tools

// Correlation returns the caller supplied correlation id.
func (in CobrosInput) Correlation() string { return in.CorrelationID }

// WithCorrelation returns a copy carrying id.
func (in CobrosInput) WithCorrelation(id string) CobrosInput {
	in.CorrelationID = id
	return in
}

// Correlation returns the caller supplied correlation id.
func (in FBL5NInput) Correlation() string { return in.CorrelationID }

// WithCorrelation returns a copy carrying id.
func (in FBL5NInput) WithCorrelation(id string) FBL5NInput {
	in.CorrelationID = id
	return in
}

// Correlation returns the caller supplied correlation id.
func (in TextInput) Correlation() string { return in.CorrelationID }

// WithCorrelation returns a copy carrying id.
func (in TextInput) WithCorrelation(id string) TextInput {
	in.CorrelationID = id
	return in
}

// Correlation returns the caller supplied correlation id.
func (in ScriptInput) Correlation() string { return in.CorrelationID }

// WithCorrelation returns a copy carrying id.
func (in ScriptInput) WithCorrelation(id string) ScriptInput {
	in.CorrelationID = id
	return in
}
