package handlers

import "github.com/bwmarrin/discordgo"

// HandlerFunc runs one slash command invocation. Returned errors are the
// "unexpected" category: the dispatcher logs them and sends a generic
// ephemeral reply. Everything a user should actually read (validation,
// not-linked, not-found) is responded to inside the handler, which then
// returns nil.
type HandlerFunc func(s *discordgo.Session, i *discordgo.InteractionCreate) error

// Command pairs a slash-command definition with its handler and premium flag.
type Command struct {
	Def     *discordgo.ApplicationCommand
	Premium bool
	Handler HandlerFunc
}

// Registry is the fixed name-keyed dispatch table, built once at startup.
// A duplicate name overwrites the earlier entry.
type Registry struct {
	order  []string
	byName map[string]*Command
}

func NewRegistry(cmds ...*Command) *Registry {
	r := &Registry{byName: make(map[string]*Command, len(cmds))}
	for _, c := range cmds {
		if _, exists := r.byName[c.Def.Name]; !exists {
			r.order = append(r.order, c.Def.Name)
		}
		r.byName[c.Def.Name] = c
	}
	return r
}

func (r *Registry) Get(name string) (*Command, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Definitions projects the declarative schema for every registered command,
// in registration order. This is what gets published to Discord.
func (r *Registry) Definitions() []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.byName[name].Def)
	}
	return defs
}

// Commands returns every registered command in registration order.
func (r *Registry) Commands() []*Command {
	cmds := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.byName[name])
	}
	return cmds
}

func (r *Registry) Len() int {
	return len(r.order)
}
