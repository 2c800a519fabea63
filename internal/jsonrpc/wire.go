package jsonrpc

// MethodReservedPrefix is the JSON-RPC-reserved method namespace. The
// wire codec does not intercept these; they pass through to dispatch,
// which returns MethodNotFound for anything it does not recognize.
const MethodReservedPrefix = "rpc."
