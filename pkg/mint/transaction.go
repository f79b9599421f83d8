package mint

import "fmt"

type ArgumentKind string

const (
	ArgumentGasCoin ArgumentKind = "GasCoin"
	ArgumentInput   ArgumentKind = "Input"
	ArgumentResult  ArgumentKind = "Result"
)

// Argument references the gas coin, a transaction input or the result of an
// earlier command.
type Argument struct {
	Kind  ArgumentKind `json:"kind"`
	Index int          `json:"index,omitempty"`
}

type InputKind string

const (
	InputObject InputKind = "object"
	InputPure   InputKind = "pure"
)

// Input is either a shared or owned object reference or a pure value with its
// Move type ("string", "vector<u8>", "u8", "u16", "u64", "address").
type Input struct {
	Kind      InputKind `json:"kind"`
	ObjectID  string    `json:"objectId,omitempty"`
	ValueType string    `json:"valueType,omitempty"`
	Value     any       `json:"value,omitempty"`
}

type SplitCoins struct {
	Coin    Argument   `json:"coin"`
	Amounts []Argument `json:"amounts"`
}

type MoveCall struct {
	Package       string     `json:"package"`
	Module        string     `json:"module"`
	Function      string     `json:"function"`
	TypeArguments []string   `json:"typeArguments"`
	Arguments     []Argument `json:"arguments"`
}

// Target is the fully qualified entry point, package::module::function.
func (c MoveCall) Target() string {
	return fmt.Sprintf("%s::%s::%s", c.Package, c.Module, c.Function)
}

// Command holds exactly one of its fields.
type Command struct {
	SplitCoins *SplitCoins `json:"splitCoins,omitempty"`
	MoveCall   *MoveCall   `json:"moveCall,omitempty"`
}

// Transaction is a programmable transaction before serialization. Turning it
// into ledger bytes is the job of a Serializer.
type Transaction struct {
	Sender    string    `json:"sender,omitempty"`
	GasBudget uint64    `json:"gasBudget,omitempty"`
	Inputs    []Input   `json:"inputs"`
	Commands  []Command `json:"commands"`
}

func (t *Transaction) object(objectID string) Argument {
	t.Inputs = append(t.Inputs, Input{Kind: InputObject, ObjectID: objectID})
	return Argument{Kind: ArgumentInput, Index: len(t.Inputs) - 1}
}

func (t *Transaction) pure(valueType string, value any) Argument {
	t.Inputs = append(t.Inputs, Input{Kind: InputPure, ValueType: valueType, Value: value})
	return Argument{Kind: ArgumentInput, Index: len(t.Inputs) - 1}
}

func (t *Transaction) splitCoins(coin Argument, amounts ...Argument) Argument {
	t.Commands = append(t.Commands, Command{SplitCoins: &SplitCoins{Coin: coin, Amounts: amounts}})
	return Argument{Kind: ArgumentResult, Index: len(t.Commands) - 1}
}

func (t *Transaction) moveCall(call MoveCall) {
	if call.TypeArguments == nil {
		call.TypeArguments = []string{}
	}
	t.Commands = append(t.Commands, Command{MoveCall: &call})
}

// MoveCalls returns the move calls of the transaction in command order.
func (t Transaction) MoveCalls() []MoveCall {
	calls := make([]MoveCall, 0, len(t.Commands))
	for _, command := range t.Commands {
		if command.MoveCall != nil {
			calls = append(calls, *command.MoveCall)
		}
	}
	return calls
}

// InputFor returns the input an Input-kind argument points at.
func (t Transaction) InputFor(argument Argument) (Input, bool) {
	if argument.Kind != ArgumentInput || argument.Index < 0 || argument.Index >= len(t.Inputs) {
		return Input{}, false
	}
	return t.Inputs[argument.Index], true
}
