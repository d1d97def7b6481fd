package node

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/service/proposal"
	"github.com/icon-project/govote/service/signer"
)

const (
	UrlSystem    = "/system"
	UrlAdmin     = "/admin"
	UrlSigners   = "/signers"
	UrlProposals = "/proposals"
	ParamAddress = "address"
	ParamID      = "id"
	UrlSignerRes = "/:" + ParamAddress
	UrlPropRes   = "/:" + ParamID
)

type Rest struct {
	n *Node
}

// swagger:model SystemView
type SystemView struct {
	BuildVersion string `json:"build_version"`
	BuildTags    string `json:"build_tags"`
	Owner        string `json:"owner"`
	RPCAddr      string `json:"rpc_addr"`
	DBType       string `json:"db_type"`
	Signers      int    `json:"signers"`
	Proposals    int    `json:"proposals"`
}

// swagger:model CreateProposalParam
type CreateProposalParam struct {
	Title   string   `json:"title"`
	Options []string `json:"options,omitempty"`
}

func RegisterRest(n *Node) {
	r := Rest{n}
	e := n.adminSrv.e
	r.RegisterSystemHandlers(e.Group(UrlSystem))
	ag := e.Group(UrlAdmin)
	r.RegisterSignerHandlers(ag.Group(UrlSigners))
	r.RegisterProposalHandlers(ag.Group(UrlProposals))
}

// HTTPErrorOf maps the coded error to the error with HTTP status.
func HTTPErrorOf(err error) error {
	var status int
	switch errors.CodeOf(err) {
	case errors.IllegalArgumentError:
		status = http.StatusBadRequest
	case errors.UnauthorizedError:
		status = http.StatusForbidden
	case errors.NotFoundError, errors.UnknownProposalError:
		status = http.StatusNotFound
	case errors.DuplicateIDError, errors.InvalidStateError:
		status = http.StatusConflict
	case errors.UnsupportedError:
		status = http.StatusMethodNotAllowed
	default:
		status = http.StatusInternalServerError
	}
	return echo.NewHTTPError(status, err.Error())
}

func (r *Rest) RegisterSystemHandlers(g *echo.Group) {
	g.GET("", r.GetSystem)
}

// swagger:operation GET /system system GetSystem
//
// Return system information
//
// ---
// produces:
// - application/json
//
// responses:
//   200:
//     description: Success
//     schema:
//       $ref: '#/definitions/SystemView'
func (r *Rest) GetSystem(ctx echo.Context) error {
	signers, err := r.n.svc.Signers().Signers()
	if err != nil {
		return HTTPErrorOf(err)
	}
	v := &SystemView{
		BuildVersion: r.n.cfg.BuildVersion,
		BuildTags:    r.n.cfg.BuildTags,
		Owner:        r.n.svc.Owner().String(),
		RPCAddr:      r.n.srv.Addr(),
		DBType:       r.n.cfg.DBType,
		Signers:      len(signers),
		Proposals:    len(r.n.svc.Proposals().Proposals()),
	}
	return ctx.JSON(http.StatusOK, v)
}

func (r *Rest) RegisterSignerHandlers(g *echo.Group) {
	g.GET("", r.GetSigners)
	g.GET(UrlSignerRes, r.GetSigner, r.AddressInjector)
	g.POST(UrlSignerRes, r.AddSigner, r.AddressInjector)
	g.DELETE(UrlSignerRes, r.RemoveSigner, r.AddressInjector)
}

func (r *Rest) AddressInjector(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		addr, err := common.NewAddressFromString(ctx.Param(ParamAddress))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		ctx.Set(ParamAddress, addr)
		return next(ctx)
	}
}

// swagger:operation GET /admin/signers signer GetSigners
//
// List signers
//
// Returns every identity touched by the owner, including deactivated ones.
//
// ---
// produces:
// - application/json
//
// responses:
//   200:
//     description: Success
//     schema:
//       type: array
//       items:
//         "$ref": "#/definitions/Signer"
func (r *Rest) GetSigners(ctx echo.Context) error {
	l, err := r.n.svc.Signers().Signers()
	if err != nil {
		return HTTPErrorOf(err)
	}
	if l == nil {
		l = make([]*signer.Signer, 0)
	}
	return ctx.JSON(http.StatusOK, l)
}

func (r *Rest) GetSigner(ctx echo.Context) error {
	addr := ctx.Get(ParamAddress).(common.Address)
	s, err := r.n.svc.Signers().Signer(addr)
	if err != nil {
		return HTTPErrorOf(err)
	}
	return ctx.JSON(http.StatusOK, s)
}

// swagger:operation POST /admin/signers/{address} signer AddSigner
//
// Authorize the identity as a signer
//
// ---
// parameters:
// - name: address
//   in: path
//   required: true
//   type: string
//
// responses:
//   200:
//     description: Success
//   403:
//     description: No owner is configured
func (r *Rest) AddSigner(ctx echo.Context) error {
	addr := ctx.Get(ParamAddress).(common.Address)
	if err := r.n.svc.Signers().AddSigner(r.n.svc.Owner(), addr); err != nil {
		return HTTPErrorOf(err)
	}
	return r.GetSigner(ctx)
}

func (r *Rest) RemoveSigner(ctx echo.Context) error {
	addr := ctx.Get(ParamAddress).(common.Address)
	if err := r.n.svc.Signers().RemoveSigner(r.n.svc.Owner(), addr); err != nil {
		return HTTPErrorOf(err)
	}
	return r.GetSigner(ctx)
}

func (r *Rest) RegisterProposalHandlers(g *echo.Group) {
	g.GET("", r.GetProposals)
	g.POST("", r.CreateProposal)
	g.GET(UrlPropRes, r.GetProposal, r.ProposalIDInjector)
	g.POST(UrlPropRes+"/close", r.CloseProposal, r.ProposalIDInjector)
}

func (r *Rest) ProposalIDInjector(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := strconv.ParseUint(ctx.Param(ParamID), 0, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		ctx.Set(ParamID, id)
		return next(ctx)
	}
}

func (r *Rest) GetProposals(ctx echo.Context) error {
	l := r.n.svc.Proposals().Proposals()
	if l == nil {
		l = make([]*proposal.Info, 0)
	}
	return ctx.JSON(http.StatusOK, l)
}

// swagger:operation POST /admin/proposals proposal CreateProposal
//
// Create a proposal
//
// Creates a ballot and registers it with the next id. Default options of
// the configuration are used if no option is given.
//
// ---
// consumes:
// - application/json
//
// produces:
// - application/json
//
// parameters:
// - name: CreateProposalParam
//   in: body
//   required: true
//   schema:
//     $ref: '#/definitions/CreateProposalParam'
//
// responses:
//   201:
//     description: Created
func (r *Rest) CreateProposal(ctx echo.Context) error {
	param := &CreateProposalParam{}
	if err := ctx.Bind(param); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	info, err := r.n.svc.CreateProposal(r.n.svc.Owner(), param.Title, param.Options)
	if err != nil {
		return HTTPErrorOf(err)
	}
	return ctx.JSON(http.StatusCreated, info)
}

func (r *Rest) GetProposal(ctx echo.Context) error {
	id := ctx.Get(ParamID).(uint64)
	info, ok := r.n.svc.Proposals().Info(id)
	if !ok {
		return HTTPErrorOf(errors.UnknownProposalError.Errorf("UnknownProposal(id=%d)", id))
	}
	return ctx.JSON(http.StatusOK, info)
}

func (r *Rest) CloseProposal(ctx echo.Context) error {
	id := ctx.Get(ParamID).(uint64)
	if err := r.n.svc.CloseProposal(r.n.svc.Owner(), id); err != nil {
		return HTTPErrorOf(err)
	}
	return r.GetProposal(ctx)
}
