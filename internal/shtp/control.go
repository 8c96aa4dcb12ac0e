package shtp

func decodeCommand(reportID uint8) CommandPacket {
	switch reportID {
	case cmdRespAdvertisement:
		return CommandPacket{Kind: CommandAdvertisement, ReportID: reportID}
	case cmdRespErrorList:
		return CommandPacket{Kind: CommandErrorList, ReportID: reportID}
	default:
		return CommandPacket{Kind: CommandUnknown, ReportID: reportID}
	}
}

func decodeExecutable(reportID uint8) ExecutablePacket {
	if reportID == execRespResetComplete {
		return ExecutablePacket{Kind: ExecResetComplete, ReportID: reportID}
	}
	return ExecutablePacket{Kind: ExecUnknown, ReportID: reportID}
}

func decodeHubControl(reportID uint8) HubControlPacket {
	switch reportID {
	case shubCommandResp:
		return HubControlPacket{Kind: HubCommandResponse, ReportID: reportID}
	case shubProdIDResp:
		return HubControlPacket{Kind: HubProductIDResponse, ReportID: reportID}
	case shubGetFeatureResp:
		return HubControlPacket{Kind: HubGetFeatureResponse, ReportID: reportID}
	default:
		return HubControlPacket{Kind: HubUnknown, ReportID: reportID}
	}
}
