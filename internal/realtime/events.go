package realtime

import "fmt"

// Notifier turns domain occurrences into broadcast events. It holds no state
// and performs no I/O beyond the dispatch call; new domain events are added
// here without touching the dispatcher or the registry. Every payload carries
// a human-readable message next to the machine-readable fields so the same
// event serves UI notifications and programmatic consumers.
type Notifier struct {
	dispatcher *Dispatcher
}

func NewNotifier(dispatcher *Dispatcher) *Notifier {
	return &Notifier{dispatcher: dispatcher}
}

// BidPlaced announces a new bid on a meme to everyone.
func (n *Notifier) BidPlaced(actor string, amount float64, memeID uint, newTotal float64, memeName string) error {
	_, err := n.dispatcher.BroadcastAll(EventBidUpdate, Payload{
		"message":  fmt.Sprintf("%s bid %.2f credits on %q", actor, amount, memeName),
		"username": actor,
		"amount":   amount,
		"memeId":   memeID,
		"newTotal": newTotal,
		"memeName": memeName,
	})
	return err
}

// VoteCast announces an up/down vote on a meme to everyone.
func (n *Notifier) VoteCast(memeID uint, voteType, actor string, newCount int, memeName string, upCount, downCount int) error {
	_, err := n.dispatcher.BroadcastAll(EventVoteUpdate, Payload{
		"message":   fmt.Sprintf("%s voted %s on %q", actor, voteType, memeName),
		"memeId":    memeID,
		"voteType":  voteType,
		"username":  actor,
		"newCount":  newCount,
		"memeName":  memeName,
		"upCount":   upCount,
		"downCount": downCount,
	})
	return err
}

// MemeCreated announces a freshly minted meme to everyone.
func (n *Notifier) MemeCreated(memeID uint, memeName, owner, imageURL, caption string) error {
	_, err := n.dispatcher.BroadcastAll(EventNewMeme, Payload{
		"message":  fmt.Sprintf("%s published a new meme: %q", owner, memeName),
		"memeId":   memeID,
		"memeName": memeName,
		"username": owner,
		"imageUrl": imageURL,
		"caption":  caption,
	})
	return err
}

// Trending highlights the meme currently leading the trailing window.
func (n *Notifier) Trending(memeID uint, memeName string, score int) error {
	_, err := n.dispatcher.BroadcastAll(EventMemeHighlight, Payload{
		"message":  fmt.Sprintf("%q is trending with %d votes", memeName, score),
		"memeId":   memeID,
		"memeName": memeName,
		"score":    score,
	})
	return err
}

// LeaderboardChanged tells clients to refetch the standings.
func (n *Notifier) LeaderboardChanged() error {
	_, err := n.dispatcher.BroadcastAll(EventLeaderboardUpdate, Payload{
		"message": "leaderboard updated",
	})
	return err
}

// NotifyUser delivers a personal notification to one identity. Reports
// whether delivery was attempted.
func (n *Notifier) NotifyUser(identity, message string) (bool, error) {
	return n.dispatcher.SendToIdentity(identity, EventNotification, Payload{
		"message": message,
	})
}

// Announce broadcasts an operator announcement to everyone.
func (n *Notifier) Announce(message string) error {
	_, err := n.dispatcher.BroadcastAll(EventSystemAnnouncement, Payload{
		"message": message,
	})
	return err
}
