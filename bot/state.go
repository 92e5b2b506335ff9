package bot

// State is the current step of a conversation. Every inbound event is
// checked against the active state's accepted alphabet before any
// transition happens; unexpected events are ignored.
type State int

const (
	StateMenu State = iota
	StateChooseBrand
	StateChooseBike
	StateEnterDays
	StateEnterDepositType
	StateEnterDepositCurrency
	StateEnterDepositOther
	StateEnterContact
	StateVerifyFolder
	StateUploadContractPhoto
	StateConfirmRent
	StateReturnChooseBrand
	StateReturnChooseBike
	StateReturnWash
	StateReturnDamage
	StateReturnConfirm
	StateExtendChooseBrand
	StateExtendChooseBike
	StateExtendEnterTerm
	StateExtendConfirm
	StateReplaceChooseBrand
	StateReplaceChooseRentBike
	StateReplaceChooseBaseBike
)

var stateNames = [...]string{
	"Menu",
	"ChooseBrand",
	"ChooseBike",
	"EnterDays",
	"EnterDepositType",
	"EnterDepositCurrency",
	"EnterDepositOther",
	"EnterContact",
	"VerifyFolder",
	"UploadContractPhoto",
	"ConfirmRent",
	"ReturnChooseBrand",
	"ReturnChooseBike",
	"ReturnWash",
	"ReturnDamage",
	"ReturnConfirm",
	"ExtendChooseBrand",
	"ExtendChooseBike",
	"ExtendEnterTerm",
	"ExtendConfirm",
	"ReplaceChooseBrand",
	"ReplaceChooseRentBike",
	"ReplaceChooseBaseBike",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// backTarget is the single back-navigation strategy: one predecessor per
// state. The generic back handler re-enters the predecessor through its
// renderer, recomputing the prompt from the session.
var backTarget = map[State]State{
	StateChooseBrand:          StateMenu,
	StateChooseBike:           StateChooseBrand,
	StateEnterDays:            StateChooseBike,
	StateEnterDepositType:     StateEnterDays,
	StateEnterDepositCurrency: StateEnterDepositType,
	StateEnterDepositOther:    StateEnterDepositType,
	StateEnterContact:         StateEnterDepositType,
	StateVerifyFolder:         StateEnterContact,
	StateUploadContractPhoto:  StateVerifyFolder,
	StateConfirmRent:          StateUploadContractPhoto,

	StateReturnChooseBrand: StateMenu,
	StateReturnChooseBike:  StateReturnChooseBrand,
	StateReturnWash:        StateReturnChooseBike,
	StateReturnDamage:      StateReturnWash,
	StateReturnConfirm:     StateReturnDamage,

	StateExtendChooseBrand: StateMenu,
	StateExtendChooseBike:  StateExtendChooseBrand,
	StateExtendEnterTerm:   StateExtendChooseBike,
	StateExtendConfirm:     StateExtendEnterTerm,

	StateReplaceChooseBrand:    StateMenu,
	StateReplaceChooseRentBike: StateReplaceChooseBrand,
	StateReplaceChooseBaseBike: StateReplaceChooseRentBike,
}
