package commands

// NewDefaultRegistry builds a registry holding the full command catalog.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()

	catalog := []Command{
		NewRegisterCommand(),
		NewLoginCommand(),
		NewLogoutCommand(),
		NewQuitCommand(),

		NewCharactersCommand(),
		NewCreateCommand(),
		NewPlayCommand(),
		NewDeleteCommand(),

		NewGoCommand(),
		NewLookCommand(),
		NewExitsCommand(),

		NewAttackCommand(),

		NewSayCommand(),
		NewEmoteCommand(),
		NewTellCommand(),
		NewChatCommand(),

		NewHelpCommand(),
		NewWhoCommand(),
		NewScoreCommand(),
		NewWealthCommand(),
		NewTimeCommand(),
		NewSaveCommand(),
	}
	catalog = append(catalog, NewMoveCommands()...)

	for _, cmd := range catalog {
		if err := r.Register(cmd); err != nil {
			return nil, err
		}
	}
	return r, nil
}
