package command

// Plan is the ordered list of commands built for one top-level invocation.
// Order is execution order.
type Plan struct {
	commands []Command
}

// NewPlan creates an empty plan
func NewPlan() *Plan {
	return &Plan{commands: []Command{}}
}

// Add appends a command to the plan
func (p *Plan) Add(cmd Command) {
	if len(cmd) == 0 {
		return
	}
	p.commands = append(p.commands, cmd)
}

// Commands returns a copy of the planned commands in execution order
func (p *Plan) Commands() []Command {
	out := make([]Command, len(p.commands))
	copy(out, p.commands)
	return out
}

// Len returns the number of planned commands
func (p *Plan) Len() int {
	return len(p.commands)
}

// Empty reports whether nothing is planned
func (p *Plan) Empty() bool {
	return len(p.commands) == 0
}
