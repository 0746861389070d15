package model

// Visibility controls who can see a piece of profile information.
type Visibility string

const (
	VisibleEveryone Visibility = "everyone"
	VisibleContacts Visibility = "contacts"
	VisibleNobody   Visibility = "nobody"
)

// FontSize is the chat text size.
type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

// Sound is the notification tone.
type Sound string

const (
	SoundDefault Sound = "default"
	SoundSilent  Sound = "silent"
	SoundClassic Sound = "classic"
)

type PrivacySettings struct {
	LastSeen     Visibility
	ProfilePhoto Visibility
	About        Visibility
	ReadReceipts bool
	TwoStep      bool
}

type ChatSettings struct {
	Wallpaper    string
	FontSize     FontSize
	EnterToSend  bool
	ArchiveChats bool
}

type NotificationSettings struct {
	Messages  bool
	Groups    bool
	Calls     bool
	Sounds    Sound
	Vibration bool
	Previews  bool
}

// PrivacyPatch is a partial update; nil fields are left unchanged.
type PrivacyPatch struct {
	LastSeen     *Visibility
	ProfilePhoto *Visibility
	About        *Visibility
	ReadReceipts *bool
	TwoStep      *bool
}

// Merge applies the non-nil fields of p.
func (s PrivacySettings) Merge(p PrivacyPatch) PrivacySettings {
	setIf(&s.LastSeen, p.LastSeen)
	setIf(&s.ProfilePhoto, p.ProfilePhoto)
	setIf(&s.About, p.About)
	setIf(&s.ReadReceipts, p.ReadReceipts)
	setIf(&s.TwoStep, p.TwoStep)
	return s
}

type ChatSettingsPatch struct {
	Wallpaper    *string
	FontSize     *FontSize
	EnterToSend  *bool
	ArchiveChats *bool
}

func (s ChatSettings) Merge(p ChatSettingsPatch) ChatSettings {
	setIf(&s.Wallpaper, p.Wallpaper)
	setIf(&s.FontSize, p.FontSize)
	setIf(&s.EnterToSend, p.EnterToSend)
	setIf(&s.ArchiveChats, p.ArchiveChats)
	return s
}

type NotificationPatch struct {
	Messages  *bool
	Groups    *bool
	Calls     *bool
	Sounds    *Sound
	Vibration *bool
	Previews  *bool
}

func (s NotificationSettings) Merge(p NotificationPatch) NotificationSettings {
	setIf(&s.Messages, p.Messages)
	setIf(&s.Groups, p.Groups)
	setIf(&s.Calls, p.Calls)
	setIf(&s.Sounds, p.Sounds)
	setIf(&s.Vibration, p.Vibration)
	setIf(&s.Previews, p.Previews)
	return s
}

// ProfilePatch updates the local user's profile. The id is never patched.
type ProfilePatch struct {
	Name   *string
	Avatar *string
	Status *string
	Phone  *string
	About  *string
}

func (u User) Merge(p ProfilePatch) User {
	setIf(&u.Name, p.Name)
	setIf(&u.Avatar, p.Avatar)
	setIf(&u.Status, p.Status)
	setIf(&u.Phone, p.Phone)
	setIf(&u.About, p.About)
	return u
}

// DefaultPrivacy returns the settings a fresh session starts with.
func DefaultPrivacy() PrivacySettings {
	return PrivacySettings{
		LastSeen:     VisibleEveryone,
		ProfilePhoto: VisibleEveryone,
		About:        VisibleEveryone,
		ReadReceipts: true,
	}
}

func DefaultChatSettings() ChatSettings {
	return ChatSettings{Wallpaper: "default", FontSize: FontMedium, EnterToSend: true}
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Messages:  true,
		Groups:    true,
		Calls:     true,
		Sounds:    SoundDefault,
		Vibration: true,
		Previews:  true,
	}
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T { return &v }

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
