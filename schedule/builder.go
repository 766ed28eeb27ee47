package schedule

// DefinitionBuilder holds a schedule definition to build
type DefinitionBuilder struct {
	definition Definition
}

// New creates a new DefinitionBuilder to set up a Definition
func New() (sb *DefinitionBuilder) {
	sb = new(DefinitionBuilder)
	sb.definition = Definition{Interval: 1}

	return sb
}

// Every sets the weekday of a weekly schedule (i.e. time.Monday.String()).
// The interval and unit are implicitly set to every 1 week
func (sb *DefinitionBuilder) Every(weekday string) *DefinitionBuilder {
	sb.definition.Weekday = weekday
	sb.definition.Interval = 1
	sb.definition.Unit = Weeks

	return sb
}

// WithInterval sets the interval and unit of the schedule (i.e. every 2 hours)
func (sb *DefinitionBuilder) WithInterval(interval uint64, unit string) *DefinitionBuilder {
	sb.definition.Interval = interval
	sb.definition.Unit = unit

	return sb
}

// AtTime sets the time of day the schedule activates (i.e. "10:00")
func (sb *DefinitionBuilder) AtTime(atTime string) *DefinitionBuilder {
	sb.definition.AtTime = atTime

	return sb
}

// Build returns the schedule Definition
func (sb *DefinitionBuilder) Build() Definition {
	return sb.definition
}
