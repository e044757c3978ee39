package ws

const (
	// client → server
	MsgCreate = "create"
	MsgJoin   = "join"
	MsgLeave  = "leave"
	MsgMove   = "move"
	MsgList   = "list"

	// server → client
	MsgReady  = "ready"
	MsgUpdate = "game_update"
	MsgError  = "game_error"
	MsgGames  = "games"
)
