package gin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	permit "github.com/feng001-8/work"
	"github.com/feng001-8/work/eip712"
	"github.com/feng001-8/work/mechanisms/evm"
	"github.com/feng001-8/work/pkg/inspect"
	"github.com/feng001-8/work/pkg/logger"
)

// ErrCodeInvalidRequest is returned for bodies that are not the expected JSON
const ErrCodeInvalidRequest = "invalid_request"

type recoverRequest struct {
	TypedData json.RawMessage `json:"typedData" binding:"required"`
	Signature string          `json:"signature" binding:"required"`
}

type recoverResponse struct {
	Address string         `json:"address"`
	R       string         `json:"r"`
	S       string         `json:"s"`
	V       uint8          `json:"v"`
	Hashes  *eip712.Hashes `json:"hashes"`
}

type verifyRequest struct {
	TypedData json.RawMessage `json:"typedData" binding:"required"`
	Signature string          `json:"signature" binding:"required"`
	Signer    string          `json:"signer" binding:"required"`
}

type splitRequest struct {
	Signature string `json:"signature" binding:"required"`
}

func hashTypedData(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err)
		return
	}
	hashes, err := inspect.Hash(body)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, hashes)
}

func recoverSignature(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err)
		return
	}
	recovery, err := inspect.Recover(inspect.RawJSON(req.TypedData), req.Signature)
	if err != nil {
		renderError(c, err)
		return
	}

	sig := recovery.Signature
	c.JSON(http.StatusOK, recoverResponse{
		Address: recovery.Address,
		R:       evm.BytesToHex(sig.R[:]),
		S:       evm.BytesToHex(sig.S[:]),
		V:       sig.V,
		Hashes:  recovery.Hashes,
	})
}

func verifySignature(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err)
		return
	}
	result, err := inspect.Verify(inspect.RawJSON(req.TypedData), req.Signature, req.Signer)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func splitSignature(c *gin.Context) {
	var req splitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err)
		return
	}
	sig, err := inspect.Split(req.Signature)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sig)
}

func currentNonce(reader evm.ChainReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		contract, owner := c.Param("contract"), c.Param("owner")
		for field, address := range map[string]string{"contract": contract, "owner": owner} {
			if !evm.IsValidAddress(address) {
				renderError(c, permit.NewTypeMismatchError(field, "address", address, "not a 0x-prefixed hex address"))
				return
			}
		}
		nonce, err := reader.CurrentNonce(c.Request.Context(), contract, owner)
		if err != nil {
			renderError(c, &permit.ContractStateError{Address: contract, Message: "failed to read nonce", Err: err})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"contract": evm.NormalizeAddress(contract),
			"owner":    evm.NormalizeAddress(owner),
			"nonce":    nonce.String(),
		})
	}
}

// renderError maps taxonomy errors to HTTP statuses. Codec errors are the
// caller's fault; contract state errors come from the upstream node.
func renderError(c *gin.Context, err error) {
	code := permit.ErrorCode(err)
	status := http.StatusBadRequest
	var stateErr *permit.ContractStateError
	switch {
	case errors.As(err, &stateErr):
		status = http.StatusBadGateway
	case code == "":
		status = http.StatusInternalServerError
		code = "internal_error"
	}
	abortWithError(c, status, code, err)
}

func abortWithError(c *gin.Context, status int, code string, err error) {
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed", zap.String("code", code), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}
