package keybindings

import tea "github.com/charmbracelet/bubbletea"

// Action represents a specific action that can be triggered by a key
type Action string

// Define all possible actions
const (
	// Global actions
	ActionQuit       Action = "quit"
	ActionToggleHelp Action = "toggle_help"
	ActionBack       Action = "back" // General purpose "go back" or "cancel"

	// Navigation actions
	ActionMoveUp     Action = "move_up"
	ActionMoveDown   Action = "move_down"
	ActionPageUp     Action = "page_up"
	ActionPageDown   Action = "page_down"
	ActionMoveTop    Action = "move_top"
	ActionMoveBottom Action = "move_bottom"

	// Transport actions
	ActionTogglePlay    Action = "toggle_play"
	ActionSkipBack      Action = "skip_back"
	ActionSkipForward   Action = "skip_forward"
	ActionSeekStart     Action = "seek_start"
	ActionSeekEnd       Action = "seek_end"
	ActionVolumeUp      Action = "volume_up"
	ActionVolumeDown    Action = "volume_down"
	ActionToggleMute    Action = "toggle_mute"
	ActionSpeedDown     Action = "speed_down"
	ActionSpeedUp       Action = "speed_up"
	ActionShowControls  Action = "show_controls"
	ActionOpenSettings  Action = "open_settings"
	ActionQualityAuto   Action = "quality_auto"
	ActionQuality1080   Action = "quality_1080"
	ActionQuality720    Action = "quality_720"
	ActionQuality480    Action = "quality_480"
	ActionQuality240    Action = "quality_240"
	ActionSelectSetting Action = "select_setting"
)

// ContextName represents a specific UI context in the application that has its own keybinds
type ContextName string

const (
	ContextGlobal   ContextName = "global"
	ContextPlayer   ContextName = "player"
	ContextSettings ContextName = "settings"
	ContextHelp     ContextName = "help"
)

var ContextBindings = map[ContextName][]Binding{
	ContextGlobal:   globalBindings,
	ContextPlayer:   playerBindings,
	ContextSettings: settingsBindings,
	ContextHelp:     helpBindings,
}

// KeyMap stores the mappings from actions to key sequences for each context
type KeyMap struct {
	Primary   string
	Secondary string // Optional alternative key
	Help      string // Description for help screen
}

// Binding maps an action to its keys and help text
type Binding struct {
	Action Action
	KeyMap KeyMap
}

// navigationBindings contains general navigation bindings for consistent navigation across the app
var navigationBindings = []Binding{
	{
		Action: ActionMoveUp,
		KeyMap: KeyMap{
			Primary:   "up",
			Secondary: "k",
			Help:      "Move cursor up",
		},
	},
	{
		Action: ActionMoveDown,
		KeyMap: KeyMap{
			Primary:   "down",
			Secondary: "j",
			Help:      "Move cursor down",
		},
	},
	{
		Action: ActionPageUp,
		KeyMap: KeyMap{
			Primary: "pgup",
			Help:    "Move up one page",
		},
	},
	{
		Action: ActionPageDown,
		KeyMap: KeyMap{
			Primary: "pgdown",
			Help:    "Move down one page",
		},
	},
	{
		Action: ActionMoveTop,
		KeyMap: KeyMap{
			Primary: "home",
			Help:    "Move top of view",
		},
	},
	{
		Action: ActionMoveBottom,
		KeyMap: KeyMap{
			Primary: "end",
			Help:    "Move bottom of view",
		},
	},
}

// globalBindings contains key bindings that work across all views
var globalBindings = []Binding{
	{
		Action: ActionQuit,
		KeyMap: KeyMap{
			Primary: "ctrl+c",
			Help:    "Quit application",
		},
	},
	{
		Action: ActionToggleHelp,
		KeyMap: KeyMap{
			Primary:   "?",
			Secondary: "ctrl+h",
			Help:      "Toggle help screen",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Go back/cancel current action",
		},
	},
}

// helpBindings contains key bindings specific to the help view
var helpBindings = withNavigation([]Binding{})

// playerBindings contains key bindings for the transport controls
var playerBindings = []Binding{
	{
		Action: ActionTogglePlay,
		KeyMap: KeyMap{
			Primary:   " ",
			Secondary: "k",
			Help:      "Play/pause",
		},
	},
	{
		Action: ActionSkipBack,
		KeyMap: KeyMap{
			Primary:   "left",
			Secondary: "j",
			Help:      "Skip back 10 seconds",
		},
	},
	{
		Action: ActionSkipForward,
		KeyMap: KeyMap{
			Primary:   "right",
			Secondary: "l",
			Help:      "Skip forward 10 seconds",
		},
	},
	{
		Action: ActionSeekStart,
		KeyMap: KeyMap{
			Primary:   "home",
			Secondary: "0",
			Help:      "Seek to the start",
		},
	},
	{
		Action: ActionSeekEnd,
		KeyMap: KeyMap{
			Primary: "end",
			Help:    "Seek to the end",
		},
	},
	{
		Action: ActionVolumeUp,
		KeyMap: KeyMap{
			Primary:   "up",
			Secondary: "+",
			Help:      "Volume up",
		},
	},
	{
		Action: ActionVolumeDown,
		KeyMap: KeyMap{
			Primary:   "down",
			Secondary: "-",
			Help:      "Volume down",
		},
	},
	{
		Action: ActionToggleMute,
		KeyMap: KeyMap{
			Primary: "m",
			Help:    "Mute/unmute",
		},
	},
	{
		Action: ActionSpeedDown,
		KeyMap: KeyMap{
			Primary: "<",
			Help:    "Slower playback",
		},
	},
	{
		Action: ActionSpeedUp,
		KeyMap: KeyMap{
			Primary: ">",
			Help:    "Faster playback",
		},
	},
	{
		Action: ActionOpenSettings,
		KeyMap: KeyMap{
			Primary: "s",
			Help:    "Open quality and speed settings",
		},
	},
	{
		Action: ActionShowControls,
		KeyMap: KeyMap{
			Primary: "c",
			Help:    "Show controls",
		},
	},
	{
		Action: ActionQualityAuto,
		KeyMap: KeyMap{
			Primary: "1",
			Help:    "Quality: Auto",
		},
	},
	{
		Action: ActionQuality1080,
		KeyMap: KeyMap{
			Primary: "2",
			Help:    "Quality: 1080p",
		},
	},
	{
		Action: ActionQuality720,
		KeyMap: KeyMap{
			Primary: "3",
			Help:    "Quality: 720p",
		},
	},
	{
		Action: ActionQuality480,
		KeyMap: KeyMap{
			Primary: "4",
			Help:    "Quality: 480p",
		},
	},
	{
		Action: ActionQuality240,
		KeyMap: KeyMap{
			Primary: "5",
			Help:    "Quality: 240p",
		},
	},
	{
		Action: ActionQuit,
		KeyMap: KeyMap{
			Primary: "q",
			Help:    "Stop playback and quit",
		},
	},
}

// settingsBindings contains key bindings for when the settings panel is open
var settingsBindings = withNavigation([]Binding{
	{
		Action: ActionSelectSetting,
		KeyMap: KeyMap{
			Primary:   "enter",
			Secondary: " ",
			Help:      "Apply the selected setting",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary:   "s",
			Secondary: "q",
			Help:      "Close settings",
		},
	},
})

// GetActionKey returns the primary key for an action
func GetActionKey(action Action, bindings []Binding) string {
	for _, binding := range bindings {
		if binding.Action == action {
			return binding.KeyMap.Primary
		}
	}
	return ""
}

// GetBindingByKey returns the action and help text for a given key
func GetBindingByKey(key string, bindings []Binding) (Action, string) {
	for _, binding := range bindings {
		if binding.KeyMap.Primary == key || binding.KeyMap.Secondary == key {
			return binding.Action, binding.KeyMap.Help
		}
	}
	return "", ""
}

// GetActionByKey returns just the action for a given key, or an empty Action if not found
func GetActionByKey(keyMsg tea.KeyMsg, name ContextName) Action {
	if bindings, exists := ContextBindings[name]; exists {
		action, _ := GetBindingByKey(keyMsg.String(), bindings)
		return action
	}
	return ""
}

// DisplayKey returns a printable name for a key.  The space bar would otherwise render as nothing.
func DisplayKey(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

// FormatKeyHelp formats a key binding for display in help text
func FormatKeyHelp(binding Binding) string {
	if binding.KeyMap.Secondary != "" {
		return DisplayKey(binding.KeyMap.Primary) + "/" + DisplayKey(binding.KeyMap.Secondary) + ": " + binding.KeyMap.Help
	}
	return DisplayKey(binding.KeyMap.Primary) + ": " + binding.KeyMap.Help
}

// withNavigation is a helper function to include navigation bindings in other binding sets
func withNavigation(bindings []Binding) []Binding {
	return append(append([]Binding{}, navigationBindings...), bindings...)
}
