package v1

import (
	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/server/jsonrpc"
	"github.com/icon-project/govote/server/metric"
	"github.com/icon-project/govote/service"
	"github.com/icon-project/govote/service/auth"
	"github.com/icon-project/govote/service/proposal"
)

const ServiceKey = "service"

func MethodRepository() *jsonrpc.MethodRepository {
	mr := jsonrpc.NewMethodRepository()

	mr.RegisterMethod("gov_submitVote", submitVote)
	mr.RegisterMethod("gov_isValidSigner", isValidSigner)
	mr.RegisterMethod("gov_getNonce", getNonce)
	mr.RegisterMethod("gov_resolveProposal", resolveProposal)

	mr.RegisterMethod("gov_getSigner", getSigner)
	mr.RegisterMethod("gov_getProposal", getProposal)
	mr.RegisterMethod("gov_getVoteMessageHash", getVoteMessageHash)

	return mr
}

func serviceOf(ctx *jsonrpc.Context) (*service.Manager, error) {
	m, ok := ctx.Get(ServiceKey).(*service.Manager)
	if !ok || m == nil {
		return nil, jsonrpc.ErrInternal("service is not available")
	}
	return m, nil
}

func addressOf(p jsonrpc.Address) (common.Address, error) {
	addr, err := p.Address()
	if err != nil {
		return addr, jsonrpc.ErrInvalidParams(err.Error())
	}
	return addr, nil
}

func uint64Of(p jsonrpc.HexInt) (uint64, error) {
	v, err := p.Uint64()
	if err != nil {
		return 0, jsonrpc.ErrInvalidParams(err.Error())
	}
	return v, nil
}

// swagger:operation POST /api/v1 v1 submitVote
//
// gov_submitVote
//
// Authenticates the signed vote and forwards it to the proposal. The
// result carries the terminal state of the submission. Rejections are
// results, not JSON-RPC errors.
//
// ---
// consumes:
//   - application/json
//
// produces:
//   - application/json
//
// parameters:
//   - description: submitVote
//     name: submitVote
//     in: body
//     required: true
//     schema:
//       allOf:
//         - $ref: '#/definitions/JsonRpcRequest'
//         - type: object
//           properties:
//             params:
//               $ref: '#/definitions/submitVoteParam'
//       example:
//         id: 1001
//         jsonrpc: "2.0"
//         method: gov_submitVote
//         params:
//           signer: "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"
//           voteOption: "0x1"
//           proposalId: "0x7"
//           nonce: "0x0"
//           signature: "0x..."
//
// responses:
//   200:
//     description: Success
//     schema:
//       allOf:
//         - $ref: '#/definitions/JsonRpcResult'
//         - type: object
//           properties:
//             result:
//               $ref: '#/definitions/voteResult'
//   default:
//     description: JSON-RPC Error
//     schema:
//       $ref: '#/definitions/JsonRpcErrorResponse'
func submitVote(ctx *jsonrpc.Context, params *jsonrpc.Params) (interface{}, error) {
	var param SubmitVoteParam
	if err := params.Convert(&param); err != nil {
		return nil, err
	}
	m, err := serviceOf(ctx)
	if err != nil {
		return nil, err
	}

	sender, err := addressOf(param.Signer)
	if err != nil {
		return nil, err
	}
	option, err := uint64Of(param.VoteOption)
	if err != nil {
		return nil, err
	}
	id, err := uint64Of(param.ProposalID)
	if err != nil {
		return nil, err
	}
	nonce, err := uint64Of(param.Nonce)
	if err != nil {
		return nil, err
	}
	sig, err := param.Signature.Bytes()
	if err != nil {
		return nil, jsonrpc.ErrInvalidParams(err.Error())
	}

	r := m.SubmitVote(ctx.Ctx(), sender, option, id, sig, nonce)
	metric.RecordVote(r.State.String(), r.Reason.String())
	return voteResultOf(r), nil
}

func isValidSigner(ctx *jsonrpc.Context, params *jsonrpc.Params) (interface{}, error) {
	var param AddressParam
	if err := params.Convert(&param); err != nil {
		return nil, err
	}
	m, err := serviceOf(ctx)
	if err != nil {
		return nil, err
	}
	addr, err := addressOf(param.Address)
	if err != nil {
		return nil, err
	}
	return m.Signers().IsValid(addr), nil
}

func getNonce(ctx *jsonrpc.Context, params *jsonrpc.Params) (interface{}, error) {
	var param AddressParam
	if err := params.Convert(&param); err != nil {
		return nil, err
	}
	m, err := serviceOf(ctx)
	if err != nil {
		return nil, err
	}
	addr, err := addressOf(param.Address)
	if err != nil {
		return nil, err
	}
	return common.NewHexUint64(m.Signers().CurrentNonce(addr)), nil
}

func resolveProposal(ctx *jsonrpc.Context, params *jsonrpc.Params) (interface{}, error) {
	var param ProposalParam
	if err := params.Convert(&param); err != nil {
		return nil, err
	}
	m, err := serviceOf(ctx)
	if err != nil {
		return nil, err
	}
	id, err := uint64Of(param.ID)
	if err != nil {
		return nil, err
	}
	_, ok := m.Proposals().Resolve(id)
	return &ResolveResult{
		ID:         common.NewHexUint64(id),
		Registered: ok,
	}, nil
}

func getSigner(ctx *jsonrpc.Context, params *jsonrpc.Params) (interface{}, error) {
	var param AddressParam
	if err := params.Convert(&param); err != nil {
		return nil, err
	}
	m, err := serviceOf(ctx)
	if err != nil {
		return nil, err
	}
	addr, err := addressOf(param.Address)
	if err != nil {
		return nil, err
	}
	s, err := m.Signers().Signer(addr)
	if err != nil {
		return nil, jsonrpc.ErrorOf(err, ctx.IncludeDebug())
	}
	return &SignerResult{
		Address: s.Address,
		Valid:   s.Valid,
		Nonce:   common.NewHexUint64(s.Nonce),
	}, nil
}

func proposalResultOf(info *proposal.Info) *ProposalResult {
	res := &ProposalResult{
		ID:      common.NewHexUint64(info.ID),
		Title:   info.Title,
		Options: info.Options,
		Closed:  info.Closed,
	}
	for _, v := range info.Tally {
		res.Tally = append(res.Tally, common.NewHexUint64(v))
	}
	return res
}

func getProposal(ctx *jsonrpc.Context, params *jsonrpc.Params) (interface{}, error) {
	var param ProposalParam
	if err := params.Convert(&param); err != nil {
		return nil, err
	}
	m, err := serviceOf(ctx)
	if err != nil {
		return nil, err
	}
	id, err := uint64Of(param.ID)
	if err != nil {
		return nil, err
	}
	info, ok := m.Proposals().Info(id)
	if !ok {
		return nil, jsonrpc.ErrorOf(
			errors.NotFoundError.Errorf("ProposalNotFound(id=%d)", id),
			ctx.IncludeDebug())
	}
	return proposalResultOf(info), nil
}

func getVoteMessageHash(_ *jsonrpc.Context, params *jsonrpc.Params) (interface{}, error) {
	var param VoteMessageParam
	if err := params.Convert(&param); err != nil {
		return nil, err
	}
	var msg auth.VoteMessage
	var err error
	if msg.VoteOption, err = uint64Of(param.VoteOption); err != nil {
		return nil, err
	}
	if msg.ProposalID, err = uint64Of(param.ProposalID); err != nil {
		return nil, err
	}
	if msg.Nonce, err = uint64Of(param.Nonce); err != nil {
		return nil, err
	}
	inner := auth.InnerHash(msg)
	return &VoteMessageHash{
		Message:   msg.Bytes(),
		InnerHash: inner,
		Hash:      auth.SignedHash(inner),
	}, nil
}
